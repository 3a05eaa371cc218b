package policy

// canDiscoverCapabilityInSpace reports whether a capability should be
// surfaced in a space's discovery listing: the capability must be
// registered, and its required policy tags must already be satisfied
// by the current principal. RequiresStepUp does not hide a capability
// from discovery, only from invocation.
func canDiscoverCapabilityInSpace(e *Engine, evalCtx EvaluationContext) bool {
	cap, known := e.capabilities[evalCtx.CapabilityID]
	if !known {
		return false
	}
	return firstMissingTag(cap.RequiredPolicies, evalCtx.PolicyTags) == ""
}

// isWindowVisibleInSpace reports whether a window whose own spaceId is
// windowSpaceID is visible to a principal with the given role focused
// on activeSpaceID: the window's space must match the active space,
// and that space's registered (or default) policy must grant CanAccess.
func isWindowVisibleInSpace(e *Engine, windowSpaceID, activeSpaceID string, role Role) bool {
	if windowSpaceID != activeSpaceID {
		return false
	}
	sp, known := e.spaces[activeSpaceID]
	if !known {
		sp = defaultSpacePolicy
	}
	if !sp.Permissions.CanAccess {
		return false
	}
	if sp.RequiredRole != "" && !meetsRole(role, sp.RequiredRole) {
		return false
	}
	return true
}

// canFocusWindowInSpace reports whether a principal may focus a window
// whose spaceId is windowSpaceID while activeSpaceID is focused:
// visibility plus the space's CanFocusWindow permission.
func canFocusWindowInSpace(e *Engine, windowSpaceID, activeSpaceID string, role Role) bool {
	if !isWindowVisibleInSpace(e, windowSpaceID, activeSpaceID, role) {
		return false
	}
	sp, known := e.spaces[activeSpaceID]
	if !known {
		sp = defaultSpacePolicy
	}
	return sp.Permissions.CanFocusWindow
}

// CanDiscoverCapabilityInSpace is the exported form of
// canDiscoverCapabilityInSpace for callers outside this package.
func (e *Engine) CanDiscoverCapabilityInSpace(evalCtx EvaluationContext) bool {
	return canDiscoverCapabilityInSpace(e, evalCtx)
}

// IsWindowVisibleInSpace is the exported form of isWindowVisibleInSpace.
func (e *Engine) IsWindowVisibleInSpace(windowSpaceID, activeSpaceID string, role Role) bool {
	return isWindowVisibleInSpace(e, windowSpaceID, activeSpaceID, role)
}

// CanFocusWindowInSpace is the exported form of canFocusWindowInSpace.
func (e *Engine) CanFocusWindowInSpace(windowSpaceID, activeSpaceID string, role Role) bool {
	return canFocusWindowInSpace(e, windowSpaceID, activeSpaceID, role)
}
