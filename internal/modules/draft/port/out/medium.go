package out

// Medium is a synchronous local key/value store.
type Medium interface {
	Read(key string) (string, bool, error)
	Write(key, value string) error
	Remove(key string) error
}
