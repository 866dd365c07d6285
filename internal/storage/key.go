package storage

import "fmt"

// ObjectKey builds the storage key for an upload. Keys are deterministic:
// `{userId}/{fileName}/{kind}`, or `{userId}/{fileName}` when no kind is
// given (kind is "video", "thumbnail", "image", ...).
func ObjectKey(userID, fileName, kind string) string {
	if kind == "" {
		return fmt.Sprintf("%s/%s", userID, fileName)
	}
	return fmt.Sprintf("%s/%s/%s", userID, fileName, kind)
}
