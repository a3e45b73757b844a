package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[RenewTokenMessage]        = (*RenewTokenCommand)(nil)
	_ gocmd.Commander[ClearCacheMessage]        = (*ClearCacheCommand)(nil)
	_ gocmd.Commander[PurgeExpiredCacheMessage] = (*PurgeExpiredCacheCommand)(nil)
)
