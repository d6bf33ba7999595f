package auth

const roleAdmin = "admin"

// CanModify reports whether the subject in c may change the record owned by ownerID:
// owners may change their own record, admins may change any.
func CanModify(c *Claims, ownerID string) bool {
	if c == nil || ownerID == "" {
		return false
	}
	return c.UID == ownerID || c.Role == roleAdmin
}
