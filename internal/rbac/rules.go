package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"learner": {
		"education:start",
		"education:submit",
		"education:view",
	},
	"support": {
		"education:view",
		"users:list",
	},
	"admin": {
		"*", // everything
	},
}
