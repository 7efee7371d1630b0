package store

import "fmt"

// Key layout. All data is user-scoped; every key starts with the owning
// user's id so a prefix scan over "user:{uid}:" covers one user's world.
//
//	user:{uid}:job:{jobID}       → Job JSON
//	user:{uid}:tag:{tagID}       → Tag JSON
//	user:{uid}:status:{statusID} → JobStatus JSON (custom statuses only)
//	user:{uid}:field:{fieldID}   → CustomField JSON
//	user:{uid}:settings          → Settings JSON

func jobKey(userID, jobID string) []byte {
	return []byte(fmt.Sprintf("user:%s:job:%s", userID, jobID))
}

func jobPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("user:%s:job:", userID))
}

func tagKey(userID, tagID string) []byte {
	return []byte(fmt.Sprintf("user:%s:tag:%s", userID, tagID))
}

func tagPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("user:%s:tag:", userID))
}

func statusKey(userID, statusID string) []byte {
	return []byte(fmt.Sprintf("user:%s:status:%s", userID, statusID))
}

func statusPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("user:%s:status:", userID))
}

func fieldKey(userID, fieldID string) []byte {
	return []byte(fmt.Sprintf("user:%s:field:%s", userID, fieldID))
}

func fieldPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("user:%s:field:", userID))
}

func settingsKey(userID string) []byte {
	return []byte(fmt.Sprintf("user:%s:settings", userID))
}
