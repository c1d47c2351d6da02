package piece

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/compta/internal/account"
	"github.com/MrJamesThe3rd/compta/internal/debounce"
)

const minSuggestQuery = 2

//go:generate mockgen -source=lookup.go -destination=directory_mock.go -package=piece
type AccountDirectory interface {
	Suggest(ctx context.Context, clientID int64, query string, limit int) ([]account.Suggestion, error)
	Lookup(ctx context.Context, clientID int64, accnum string) (account.LookupResult, error)
}

// AccountResult is the outcome of one debounced lookup for a row.
type AccountResult struct {
	UID         string
	Query       string
	Suggestions []account.Suggestion

	// Resolved is false when the lookup itself failed; the row must then be
	// left as it is.
	Resolved bool
	Lookup   account.LookupResult
}

// AccountLookups debounces account suggest/lookup calls per row uid. Results
// are handed to deliver from a background goroutine; the owner of the
// Session applies them with Session.ApplyAccountResult.
type AccountLookups struct {
	dir      AccountDirectory
	clientID int64
	delay    time.Duration
	limit    int
	deliver  func(AccountResult)
	sched    *debounce.Scheduler[string]
}

type LookupConfig struct {
	Delay time.Duration
	Limit int
}

func NewAccountLookups(dir AccountDirectory, clientID int64, cfg LookupConfig, deliver func(AccountResult)) *AccountLookups {
	return &AccountLookups{
		dir:      dir,
		clientID: clientID,
		delay:    cfg.Delay,
		limit:    cfg.Limit,
		deliver:  deliver,
		sched:    debounce.New[string](),
	}
}

// Input records a keystroke in the account field of row uid. Any lookup
// still pending for that row is superseded.
func (l *AccountLookups) Input(uid, value string) {
	l.sched.Schedule(uid, l.delay, func(ctx context.Context) {
		res := l.resolve(ctx, uid, value)
		if ctx.Err() != nil {
			return
		}

		l.deliver(res)
	})
}

// Cancel drops the pending lookup of row uid.
func (l *AccountLookups) Cancel(uid string) {
	l.sched.Cancel(uid)
}

// Pending reports whether a lookup is scheduled or running for row uid.
func (l *AccountLookups) Pending(uid string) bool {
	return l.sched.Pending(uid)
}

// Close cancels every pending lookup; nothing is delivered afterwards.
func (l *AccountLookups) Close() {
	l.sched.Stop()
}

func (l *AccountLookups) resolve(ctx context.Context, uid, value string) AccountResult {
	res := AccountResult{UID: uid, Query: value}

	if len([]rune(value)) >= minSuggestQuery {
		items, err := l.dir.Suggest(ctx, l.clientID, value, l.limit)
		if err != nil {
			slog.Warn("account suggest failed", "uid", uid, "error", err)
		} else {
			res.Suggestions = items
		}
	}

	found, err := l.dir.Lookup(ctx, l.clientID, value)
	if err != nil {
		slog.Warn("account lookup failed", "uid", uid, "error", err)
		return res
	}

	res.Resolved = true
	res.Lookup = found

	return res
}
