package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/bookshape"
	"github.com/mrlokans/bookshelf/internal/entities"
)

const (
	targetBook  = "book:"
	targetQuote = "quote:"

	localIDPrefix = "local-"
)

// ErrUnresolvedBook is returned when a local book id has no server id yet and
// no queued create that would give it one.
var ErrUnresolvedBook = errors.New("book has no server id")

// Result describes how a mutation was handled.
type Result struct {
	State      MutationState
	Book       *bookshape.LocalBook
	Quote      *entities.Quote
	MutationID uint
}

// SyncReport summarizes one replay pass.
type SyncReport struct {
	Replayed  int
	Failed    int
	Remaining int64
}

// Library is a device's book collection that keeps working while the server
// is unreachable. Changes made offline are applied to the local cache, queued
// and replayed in order once connectivity returns.
//
// All operations are serialized; replay is sequential.
type Library struct {
	mu       sync.Mutex
	api      API
	store    *Store
	conn     *Connectivity
	deviceID string
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
}

type Option func(*Library)

func WithNotifier(n Notifier) Option {
	return func(l *Library) { l.notifier = n }
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Library) { l.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// NewLibrary creates a library for deviceID. If no logger is given, a default
// stderr logger is used.
func NewLibrary(api API, store *Store, conn *Connectivity, deviceID string, opts ...Option) *Library {
	l := &Library{
		api:      api,
		store:    store,
		conn:     conn,
		deviceID: deviceID,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.New(os.Stderr, "[SYNC] ", log.LstdFlags)
	}
	if l.notifier == nil {
		l.notifier = LogNotifier{Logger: l.logger}
	}
	return l
}

// Load returns the book collection. When online it first replays the queue,
// then replaces the local cache with the server's snapshot. When offline, or
// when the server turns out to be unreachable, it returns the cached books.
func (l *Library) Load(ctx context.Context) ([]bookshape.LocalBook, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn.Online() {
		if _, err := l.sync(ctx); err != nil {
			return nil, err
		}
	}
	if l.conn.Online() {
		books, err := l.refresh(ctx)
		if err == nil {
			return books, nil
		}
		if !IsConnectivityError(err) {
			return nil, err
		}
		l.conn.Set(false)
		l.logger.Printf("Server unreachable, using local cache: %v", err)
	}
	return l.store.Books(ctx)
}

func (l *Library) refresh(ctx context.Context) ([]bookshape.LocalBook, error) {
	wireBooks, err := l.api.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	wireShelves, err := l.api.ListShelves(ctx)
	if err != nil {
		return nil, err
	}

	books := make([]bookshape.LocalBook, 0, len(wireBooks))
	for _, b := range wireBooks {
		books = append(books, bookshape.ToLocal(b))
	}
	shelves := make([]bookshape.LocalShelf, 0, len(wireShelves))
	for _, s := range wireShelves {
		shelves = append(shelves, bookshape.ToLocalShelf(s))
	}

	if err := l.store.ReplaceSnapshot(ctx, books, shelves); err != nil {
		return nil, fmt.Errorf("failed to replace local snapshot: %w", err)
	}
	if err := l.store.SetSetting(ctx, SettingLastLoadAt, l.now().UTC().Format(time.RFC3339)); err != nil {
		l.logger.Printf("Failed to record load time: %v", err)
	}
	return books, nil
}

// Books returns the cached books without contacting the server.
func (l *Library) Books(ctx context.Context) ([]bookshape.LocalBook, error) {
	return l.store.Books(ctx)
}

// Book returns one cached book by key.
func (l *Library) Book(ctx context.Context, key string) (*bookshape.LocalBook, error) {
	return l.store.Book(ctx, key)
}

// Shelves returns the cached shelves.
func (l *Library) Shelves(ctx context.Context) ([]bookshape.LocalShelf, error) {
	return l.store.Shelves(ctx)
}

// Queue returns the queued mutations in replay order.
func (l *Library) Queue(ctx context.Context) ([]Mutation, error) {
	return l.store.Pending(ctx)
}

// Discard drops a queued mutation without sending it. Its local effect stays
// in the cache until the next load.
func (l *Library) Discard(ctx context.Context, id uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Discard(ctx, id)
}

// -----------------------------------------------------------------------------
// Books
// -----------------------------------------------------------------------------

// CreateBook creates a book on the server, or locally with a local id when
// the server cannot be reached.
func (l *Library) CreateBook(ctx context.Context, input entities.BookInput) (Result, error) {
	if err := validateBookInput(input); err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn.Online() {
		book, err := l.api.CreateBook(ctx, input)
		if err == nil {
			local := bookshape.ToLocal(*book)
			if err := l.store.PutBook(ctx, local.Key(), local); err != nil {
				return Result{}, err
			}
			return Result{State: StateSynced, Book: &local}, nil
		}
		if !IsConnectivityError(err) {
			return Result{}, err
		}
		l.wentOffline(err)
	}

	names, err := l.store.ShelfNames(ctx)
	if err != nil {
		return Result{}, err
	}
	local := bookshape.FromInput(input, l.deviceID, names, l.now())
	local.LocalID = localIDPrefix + uuid.NewString()
	if err := l.store.PutBook(ctx, local.LocalID, local); err != nil {
		return Result{}, err
	}

	m, err := l.enqueue(ctx, KindCreateBook, targetBook+local.LocalID, local.LocalID, input, StateQueuedOffline)
	if err != nil {
		return Result{}, err
	}
	l.notifyQueued(m, fmt.Sprintf("Book %q saved locally", input.Title))
	return Result{State: StateQueuedOffline, Book: &local, MutationID: m.ID}, nil
}

// UpdateBook replaces every field and relationship of the book under key.
func (l *Library) UpdateBook(ctx context.Context, key string, input entities.BookInput) (Result, error) {
	if err := validateBookInput(input); err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.mutateBook(ctx, key, KindUpdateBook, input,
		func(b bookshape.LocalBook, names map[uint]string) bookshape.LocalBook {
			return bookshape.ApplyInput(b, input, names, l.now())
		},
		func(ctx context.Context, id uint) (*entities.Book, error) {
			return l.api.UpdateBook(ctx, id, input)
		})
}

// UpdateReview changes only the personal review fields of the book under key.
func (l *Library) UpdateReview(ctx context.Context, key string, patch entities.ReviewPatch) (Result, error) {
	if err := validateReviewPatch(patch); err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.mutateBook(ctx, key, KindUpdateReview, patch,
		func(b bookshape.LocalBook, _ map[uint]string) bookshape.LocalBook {
			return bookshape.ApplyReview(b, patch, l.now())
		},
		func(ctx context.Context, id uint) (*entities.Book, error) {
			return l.api.UpdateReview(ctx, id, patch)
		})
}

func (l *Library) mutateBook(
	ctx context.Context,
	key string,
	kind MutationKind,
	payload any,
	apply func(bookshape.LocalBook, map[uint]string) bookshape.LocalBook,
	send func(context.Context, uint) (*entities.Book, error),
) (Result, error) {
	cached, err := l.store.Book(ctx, key)
	if err != nil && !errors.Is(err, ErrNotCached) {
		return Result{}, err
	}

	target := targetBook + key
	if l.conn.Online() {
		waiting, err := l.hasQueuedFor(ctx, key)
		if err != nil {
			return Result{}, err
		}
		if waiting {
			// Earlier changes to this book are still queued; go behind them.
			return l.queueBehind(ctx, kind, target, payload, cached, apply)
		}

		id, err := l.resolve(ctx, key)
		if err != nil {
			return Result{}, err
		}
		book, err := send(ctx, id)
		if err == nil {
			local := bookshape.ToLocal(*book)
			if err := l.store.PutBook(ctx, key, local); err != nil {
				return Result{}, err
			}
			return Result{State: StateSynced, Book: &local}, nil
		}
		if !IsConnectivityError(err) {
			return Result{}, err
		}
		l.wentOffline(err)
	}

	local, err := l.applyLocal(ctx, key, cached, apply)
	if err != nil {
		return Result{}, err
	}
	m, err := l.enqueue(ctx, kind, target, "", payload, StateQueuedOffline)
	if err != nil {
		return Result{}, err
	}
	l.notifyQueued(m, fmt.Sprintf("Change to book %s saved locally", key))
	return Result{State: StateQueuedOffline, Book: local, MutationID: m.ID}, nil
}

// queueBehind applies a change locally, queues it as pending-local and runs a
// replay pass so it reaches the server after the entries ahead of it.
func (l *Library) queueBehind(
	ctx context.Context,
	kind MutationKind,
	target string,
	payload any,
	cached *bookshape.LocalBook,
	apply func(bookshape.LocalBook, map[uint]string) bookshape.LocalBook,
) (Result, error) {
	key := strings.TrimPrefix(target, targetBook)
	local, err := l.applyLocal(ctx, key, cached, apply)
	if err != nil {
		return Result{}, err
	}
	m, err := l.enqueue(ctx, kind, target, "", payload, StatePendingLocal)
	if err != nil {
		return Result{}, err
	}
	if _, err := l.sync(ctx); err != nil {
		return Result{}, err
	}
	return l.outcome(ctx, m, local)
}

func (l *Library) outcome(ctx context.Context, m *Mutation, local *bookshape.LocalBook) (Result, error) {
	current, err := l.store.Mutation(ctx, m.ID)
	if err != nil {
		if errors.Is(err, ErrNotQueued) {
			return Result{State: StateReplayed, Book: l.cachedAfterReplay(ctx, m.Target, local)}, nil
		}
		return Result{}, err
	}
	return Result{State: current.State, Book: local, MutationID: m.ID}, nil
}

func (l *Library) cachedAfterReplay(ctx context.Context, target string, fallback *bookshape.LocalBook) *bookshape.LocalBook {
	key := strings.TrimPrefix(target, targetBook)
	if id, ok, err := l.store.ResolveAlias(ctx, key); err == nil && ok {
		key = strconv.FormatUint(uint64(id), 10)
	}
	if b, err := l.store.Book(ctx, key); err == nil {
		return b
	}
	return fallback
}

func (l *Library) applyLocal(
	ctx context.Context,
	key string,
	cached *bookshape.LocalBook,
	apply func(bookshape.LocalBook, map[uint]string) bookshape.LocalBook,
) (*bookshape.LocalBook, error) {
	if cached == nil {
		// Nothing to apply to; the change still replays once online.
		return nil, nil
	}
	names, err := l.store.ShelfNames(ctx)
	if err != nil {
		return nil, err
	}
	next := apply(*cached, names)
	if err := l.store.PutBook(ctx, key, next); err != nil {
		return nil, err
	}
	return &next, nil
}

// -----------------------------------------------------------------------------
// Quotes
// -----------------------------------------------------------------------------

// CreateQuote adds a quote to the book under bookKey. Quotes are not cached
// locally; offline quotes only exist in the queue until replayed.
func (l *Library) CreateQuote(ctx context.Context, bookKey string, input entities.QuoteInput) (Result, error) {
	if err := validateQuoteInput(input); err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	target := targetBook + bookKey
	if l.conn.Online() {
		waiting, err := l.hasQueuedFor(ctx, bookKey)
		if err != nil {
			return Result{}, err
		}
		if !waiting {
			id, err := l.resolve(ctx, bookKey)
			if err != nil {
				return Result{}, err
			}
			input.BookID = id
			quote, err := l.api.CreateQuote(ctx, input)
			if err == nil {
				return Result{State: StateSynced, Quote: quote}, nil
			}
			if !IsConnectivityError(err) {
				return Result{}, err
			}
			l.wentOffline(err)
		} else {
			return l.queueQuoteBehind(ctx, KindCreateQuote, target, input)
		}
	}

	m, err := l.enqueue(ctx, KindCreateQuote, target, "", input, StateQueuedOffline)
	if err != nil {
		return Result{}, err
	}
	l.notifyQueued(m, "Quote saved locally")
	return Result{State: StateQueuedOffline, MutationID: m.ID}, nil
}

// UpdateQuote replaces the quote's editable fields.
func (l *Library) UpdateQuote(ctx context.Context, id uint, input entities.QuoteInput) (Result, error) {
	if err := validateQuoteInput(input); err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.mutateQuote(ctx, KindUpdateQuote, id, input, func(ctx context.Context) (*entities.Quote, error) {
		return l.api.UpdateQuote(ctx, id, input)
	})
}

// DeleteQuote removes a quote.
func (l *Library) DeleteQuote(ctx context.Context, id uint) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.mutateQuote(ctx, KindDeleteQuote, id, nil, func(ctx context.Context) (*entities.Quote, error) {
		return nil, l.api.DeleteQuote(ctx, id)
	})
}

func (l *Library) mutateQuote(
	ctx context.Context,
	kind MutationKind,
	id uint,
	payload any,
	send func(context.Context) (*entities.Quote, error),
) (Result, error) {
	target := targetQuote + strconv.FormatUint(uint64(id), 10)
	if l.conn.Online() {
		waiting, err := l.store.HasPendingFor(ctx, target)
		if err != nil {
			return Result{}, err
		}
		if waiting {
			return l.queueQuoteBehind(ctx, kind, target, payload)
		}

		quote, err := send(ctx)
		if err == nil {
			return Result{State: StateSynced, Quote: quote}, nil
		}
		if !IsConnectivityError(err) {
			return Result{}, err
		}
		l.wentOffline(err)
	}

	m, err := l.enqueue(ctx, kind, target, "", payload, StateQueuedOffline)
	if err != nil {
		return Result{}, err
	}
	l.notifyQueued(m, fmt.Sprintf("Change to quote %d saved locally", id))
	return Result{State: StateQueuedOffline, MutationID: m.ID}, nil
}

func (l *Library) queueQuoteBehind(ctx context.Context, kind MutationKind, target string, payload any) (Result, error) {
	m, err := l.enqueue(ctx, kind, target, "", payload, StatePendingLocal)
	if err != nil {
		return Result{}, err
	}
	if _, err := l.sync(ctx); err != nil {
		return Result{}, err
	}
	current, err := l.store.Mutation(ctx, m.ID)
	if err != nil {
		if errors.Is(err, ErrNotQueued) {
			return Result{State: StateReplayed}, nil
		}
		return Result{}, err
	}
	return Result{State: current.State, MutationID: m.ID}, nil
}

// -----------------------------------------------------------------------------
// Replay
// -----------------------------------------------------------------------------

// Sync replays the queue in enqueue order, one mutation at a time. Confirmed
// mutations leave the queue; failed ones stay queued as replay-failed and the
// pass moves on. If the server becomes unreachable the pass stops and the
// connectivity flag goes offline: the entry that hit the outage is marked
// replay-failed and the entries after it are not attempted until the next pass.
func (l *Library) Sync(ctx context.Context) (SyncReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sync(ctx)
}

func (l *Library) sync(ctx context.Context) (SyncReport, error) {
	var report SyncReport

	pending, err := l.store.Pending(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to read offline queue: %w", err)
	}

	for _, m := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		err := l.replay(ctx, m)
		if err == nil {
			if err := l.store.MarkReplayed(ctx, m.ID); err != nil {
				return report, err
			}
			report.Replayed++
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, ctxErr
		}

		report.Failed++
		if markErr := l.store.MarkFailed(ctx, m.ID, err); markErr != nil {
			return report, markErr
		}
		l.logger.Printf("Replay of %s %s (#%d) failed: %v", m.Kind, m.Target, m.ID, err)
		l.notifier.Notify(Notice{
			Kind:       m.Kind,
			State:      StateReplayFailed,
			MutationID: m.ID,
			Message:    fmt.Sprintf("Could not sync %s for %s: %v", m.Kind, m.Target, err),
		})

		if IsConnectivityError(err) {
			l.conn.Set(false)
			break
		}
	}

	remaining, err := l.store.PendingCount(ctx)
	if err != nil {
		return report, err
	}
	report.Remaining = remaining

	if report.Replayed > 0 || report.Failed > 0 {
		l.logger.Printf("Sync finished: %d replayed, %d failed, %d queued", report.Replayed, report.Failed, report.Remaining)
		if err := l.store.SetSetting(ctx, SettingLastSyncAt, l.now().UTC().Format(time.RFC3339)); err != nil {
			l.logger.Printf("Failed to record sync time: %v", err)
		}
	}
	return report, nil
}

func (l *Library) replay(ctx context.Context, m Mutation) error {
	switch m.Kind {
	case KindCreateBook:
		var input entities.BookInput
		if err := json.Unmarshal(m.Payload, &input); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		book, err := l.api.CreateBook(ctx, input)
		if err != nil {
			return err
		}
		if err := l.store.SetAlias(ctx, m.LocalID, book.ID); err != nil {
			return err
		}
		return l.store.PutBook(ctx, m.LocalID, bookshape.ToLocal(*book))

	case KindUpdateBook:
		var input entities.BookInput
		if err := json.Unmarshal(m.Payload, &input); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		return l.replayBook(ctx, m.Target, func(id uint) (*entities.Book, error) {
			return l.api.UpdateBook(ctx, id, input)
		})

	case KindUpdateReview:
		var patch entities.ReviewPatch
		if err := json.Unmarshal(m.Payload, &patch); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		return l.replayBook(ctx, m.Target, func(id uint) (*entities.Book, error) {
			return l.api.UpdateReview(ctx, id, patch)
		})

	case KindCreateQuote:
		var input entities.QuoteInput
		if err := json.Unmarshal(m.Payload, &input); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		id, err := l.resolve(ctx, strings.TrimPrefix(m.Target, targetBook))
		if err != nil {
			return err
		}
		input.BookID = id
		_, err = l.api.CreateQuote(ctx, input)
		return err

	case KindUpdateQuote:
		var input entities.QuoteInput
		if err := json.Unmarshal(m.Payload, &input); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		id, err := quoteID(m.Target)
		if err != nil {
			return err
		}
		_, err = l.api.UpdateQuote(ctx, id, input)
		return err

	case KindDeleteQuote:
		id, err := quoteID(m.Target)
		if err != nil {
			return err
		}
		return l.api.DeleteQuote(ctx, id)
	}
	return fmt.Errorf("unknown mutation kind %q", m.Kind)
}

func (l *Library) replayBook(ctx context.Context, target string, send func(uint) (*entities.Book, error)) error {
	id, err := l.resolve(ctx, strings.TrimPrefix(target, targetBook))
	if err != nil {
		return err
	}
	book, err := send(id)
	if err != nil {
		return err
	}
	local := bookshape.ToLocal(*book)
	return l.store.PutBook(ctx, local.Key(), local)
}

// Run replays the queue every time connectivity comes back, until ctx is done.
func (l *Library) Run(ctx context.Context) error {
	trigger := make(chan struct{}, 1)
	unsubscribe := l.conn.Subscribe(func(online bool) {
		if !online {
			return
		}
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			if _, err := l.Sync(ctx); err != nil && ctx.Err() == nil {
				l.logger.Printf("Sync after reconnect failed: %v", err)
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// resolve maps a book key to its server id: numeric keys are server ids,
// local ids go through the alias table.
func (l *Library) resolve(ctx context.Context, key string) (uint, error) {
	if id, err := strconv.ParseUint(key, 10, 64); err == nil && id > 0 {
		return uint(id), nil
	}
	id, ok, err := l.store.ResolveAlias(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnresolvedBook, key)
	}
	return id, nil
}

// hasQueuedFor reports whether queued mutations still target the book under
// key, under any of its known keys.
func (l *Library) hasQueuedFor(ctx context.Context, key string) (bool, error) {
	targets := []string{targetBook + key}
	if id, err := strconv.ParseUint(key, 10, 64); err == nil {
		aliases, err := l.store.AliasesFor(ctx, uint(id))
		if err != nil {
			return false, err
		}
		for _, a := range aliases {
			targets = append(targets, targetBook+a)
		}
	} else if id, ok, err := l.store.ResolveAlias(ctx, key); err != nil {
		return false, err
	} else if ok {
		targets = append(targets, targetBook+strconv.FormatUint(uint64(id), 10))
	}
	return l.store.HasPendingFor(ctx, targets...)
}

func (l *Library) enqueue(ctx context.Context, kind MutationKind, target, localID string, payload any, state MutationState) (*Mutation, error) {
	m := &Mutation{Kind: kind, Target: target, LocalID: localID, State: state}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", kind, err)
		}
		m.Payload = raw
	}
	if err := l.store.Enqueue(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to queue %s: %w", kind, err)
	}
	return m, nil
}

func (l *Library) wentOffline(err error) {
	l.logger.Printf("Server unreachable: %v", err)
	l.conn.Set(false)
}

func (l *Library) notifyQueued(m *Mutation, what string) {
	l.notifier.Notify(Notice{
		Kind:       m.Kind,
		State:      StateQueuedOffline,
		MutationID: m.ID,
		Message:    what + "; it will be sent when the server is reachable",
	})
}

func quoteID(target string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(target, targetQuote), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid quote target %q", target)
	}
	return uint(id), nil
}

func validateBookInput(in entities.BookInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.Validation("title is required")
	}
	if in.Rating != nil && (*in.Rating < 0 || *in.Rating > 5) {
		return apperr.Validation("rating must be between 0 and 5")
	}
	if in.PersonalRating != nil && (*in.PersonalRating < 1 || *in.PersonalRating > 5) {
		return apperr.Validation("personal_rating must be between 1 and 5")
	}
	if in.ReadingStatus != "" && !in.ReadingStatus.Valid() {
		return apperr.Validation("unknown reading_status %q", in.ReadingStatus)
	}
	return nil
}

func validateReviewPatch(p entities.ReviewPatch) error {
	if p.PersonalRating != nil && (*p.PersonalRating < 1 || *p.PersonalRating > 5) {
		return apperr.Validation("personal_rating must be between 1 and 5")
	}
	if p.ReadingStatus != nil && !p.ReadingStatus.Valid() {
		return apperr.Validation("unknown reading_status %q", *p.ReadingStatus)
	}
	return nil
}

func validateQuoteInput(in entities.QuoteInput) error {
	if strings.TrimSpace(in.Text) == "" {
		return apperr.Validation("text is required")
	}
	return nil
}
