package rpc

// The RPC surface carries a single major version. Clients may pin one via the
// request envelope; unpinned requests get the default.
const (
	rpcAPICurrentVersion      = 1
	rpcAPIMinSupportedVersion = 1
	rpcAPIDefaultVersion      = 1
	rpcNotificationVersion    = 1
)

func validateRPCAPIVersion(v *int) *rpcError {
	if v == nil {
		return nil
	}
	if *v < rpcAPIMinSupportedVersion {
		return &rpcError{
			Code:    -32081,
			Message: "requested rpc api version has been retired",
		}
	}
	if *v > rpcAPICurrentVersion {
		return &rpcError{
			Code:    -32080,
			Message: "requested rpc api version is newer than this daemon supports",
		}
	}
	return nil
}

func rpcVersionInfo() map[string]any {
	return map[string]any{
		"current_version":       rpcAPICurrentVersion,
		"min_supported_version": rpcAPIMinSupportedVersion,
		"default_version":       rpcAPIDefaultVersion,
		"policy":                "major-only; versions below min or above current are rejected",
	}
}
