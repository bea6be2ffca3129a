package bootimg

import "os"

// CheckEnv reports whether the environment variable key is set to "true".
func CheckEnv(key string) bool {
	value, ret := os.LookupEnv(key)
	if ret {
		if value == "true" {
			return true
		}
	}
	return false
}
