package interfaces

// ToInterfaceSlice 任意切片转为[]any，用于拼接绑定参数
func ToInterfaceSlice[T any](slice []T) []any {
	res := make([]any, len(slice))
	for i, v := range slice {
		res[i] = v
	}
	return res
}
