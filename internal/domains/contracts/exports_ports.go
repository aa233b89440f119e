package contracts

import "fave/go-backend/internal/app"

type CoreAPI = app.CoreAPI
type DaemonService = app.DaemonService
type NotificationEvent = app.NotificationEvent

type AccountDirectory = app.AccountDirectory
type ListingRepository = app.ListingRepository
type LedgerGateway = app.LedgerGateway
type NotificationSink = app.NotificationSink

type CategorizedError = app.CategorizedError
