package api

import "fave/go-backend/internal/app/contracts"

// CoreAPI is kept for backward compatibility inside api package.
// New transport-neutral interface lives in internal/app/contracts.
type CoreAPI = contracts.CoreAPI
