package contracts

import "fave/go-backend/internal/app"

// CoreAPI is a compatibility alias for gradual migration from internal/app to
// internal/app/contracts without behavior changes.
type CoreAPI = app.CoreAPI
type DaemonService = app.DaemonService

type AccountDirectory = app.AccountDirectory
type ListingRepository = app.ListingRepository
type LedgerGateway = app.LedgerGateway
type NotificationSink = app.NotificationSink

type Connection = app.Connection
type Subscriber = app.Subscriber
type NotificationEvent = app.NotificationEvent

type CategorizedError = app.CategorizedError
