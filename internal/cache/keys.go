package cache

import "strings"

const (
	GlobalKeyPrefix = "vocabquiz"

	profileObject  = "profile"
	profileVersion = "v1"
)

// GenerateCacheKey generates a key for a given object type and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the key.
func GenerateCacheKey(objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// ProfileKey is where the player profile blob lives.
func ProfileKey() string {
	return GenerateCacheKey(profileObject, profileVersion)
}
