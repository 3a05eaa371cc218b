package policy

// DefaultCapabilities returns the baseline capability registry shipped
// with the platform. Adapters load the authoritative set from
// configuration or an outbound store; this set exists so NewEngine has
// something sane to start from in tests and local runs.
func DefaultCapabilities() []CapabilityPolicy {
	return []CapabilityPolicy{
		{CapabilityID: "system.configure", RequiredPolicies: []string{"admin"}},
		{CapabilityID: "vfs.write", RequiredPolicies: []string{"fs.write"}},
		{CapabilityID: "session.elevate", RequiresStepUp: true},
	}
}

// DefaultSpaces returns the baseline space registry.
func DefaultSpaces() []SpacePolicy {
	return []SpacePolicy{
		{
			SpaceID: "public",
			Permissions: SpacePermissions{
				CanAccess:      true,
				CanOpenWindow:  true,
				CanFocusWindow: true,
				CanMoveWindow:  true,
			},
		},
		{
			SpaceID:      "admin",
			RequiredRole: RoleAdmin,
			Permissions: SpacePermissions{
				CanAccess:      true,
				CanOpenWindow:  true,
				CanFocusWindow: true,
				CanMoveWindow:  false,
			},
		},
	}
}
