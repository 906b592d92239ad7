package config

type Config interface {
	// Get key value from the merged settings files.
	Get(key string) (interface{}, error)
}
