package offline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/normalize"
)

// fakeAPI is an in-memory server. Calls made while offline never reach it
// and are not recorded.
type fakeAPI struct {
	mu          sync.Mutex
	offline     bool
	reject      func(call string) error
	books       map[uint]entities.Book
	order       []uint
	quotes      map[uint]entities.Quote
	shelves     []entities.Shelf
	nextBookID  uint
	nextQuoteID uint
	calls       []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		books:  make(map[uint]entities.Book),
		quotes: make(map[uint]entities.Quote),
	}
}

func (f *fakeAPI) setOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// call must be made with f.mu held.
func (f *fakeAPI) call(format string, args ...any) error {
	name := fmt.Sprintf(format, args...)
	if f.offline {
		return fmt.Errorf("%w: dial tcp: connection refused", ErrOffline)
	}
	f.calls = append(f.calls, name)
	if f.reject != nil {
		return f.reject(name)
	}
	return nil
}

func (f *fakeAPI) Health(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return fmt.Errorf("%w: dial tcp: connection refused", ErrOffline)
	}
	return nil
}

func (f *fakeAPI) ListBooks(ctx context.Context) ([]entities.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("list_books"); err != nil {
		return nil, err
	}
	out := make([]entities.Book, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		out = append(out, f.books[f.order[i]])
	}
	return out, nil
}

func (f *fakeAPI) ListShelves(ctx context.Context) ([]entities.Shelf, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("list_shelves"); err != nil {
		return nil, err
	}
	return append([]entities.Shelf(nil), f.shelves...), nil
}

func (f *fakeAPI) CreateBook(ctx context.Context, input entities.BookInput) (*entities.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("create_book %s", input.Title); err != nil {
		return nil, err
	}
	f.nextBookID++
	now := time.Now().UTC()
	book := f.fill(entities.Book{ID: f.nextBookID, DeviceID: "device-1", DateAdded: &now, CreatedAt: now}, input)
	f.books[book.ID] = book
	f.order = append(f.order, book.ID)
	return &book, nil
}

func (f *fakeAPI) UpdateBook(ctx context.Context, id uint, input entities.BookInput) (*entities.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("update_book %d %s", id, input.Title); err != nil {
		return nil, err
	}
	current, ok := f.books[id]
	if !ok {
		return nil, &APIError{StatusCode: 404, Message: "book not found"}
	}
	book := f.fill(entities.Book{ID: id, DeviceID: current.DeviceID, DateAdded: current.DateAdded, CreatedAt: current.CreatedAt}, input)
	f.books[id] = book
	return &book, nil
}

func (f *fakeAPI) UpdateReview(ctx context.Context, id uint, patch entities.ReviewPatch) (*entities.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("update_review %d", id); err != nil {
		return nil, err
	}
	book, ok := f.books[id]
	if !ok {
		return nil, &APIError{StatusCode: 404, Message: "book not found"}
	}
	if patch.PersonalRating != nil {
		book.PersonalRating = patch.PersonalRating
	}
	if patch.PersonalReview != nil {
		book.PersonalReview = patch.PersonalReview
	}
	if patch.ReadingStatus != nil {
		book.ReadingStatus = *patch.ReadingStatus
	}
	if patch.ReadingNotes != nil {
		book.ReadingNotes = patch.ReadingNotes
	}
	f.books[id] = book
	return &book, nil
}

func (f *fakeAPI) CreateQuote(ctx context.Context, input entities.QuoteInput) (*entities.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("create_quote %d", input.BookID); err != nil {
		return nil, err
	}
	if _, ok := f.books[input.BookID]; !ok {
		return nil, &APIError{StatusCode: 404, Message: "book not found"}
	}
	f.nextQuoteID++
	q := entities.Quote{ID: f.nextQuoteID, BookID: input.BookID, Text: input.Text, PageNumber: input.PageNumber}
	f.quotes[q.ID] = q
	return &q, nil
}

func (f *fakeAPI) UpdateQuote(ctx context.Context, id uint, input entities.QuoteInput) (*entities.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("update_quote %d", id); err != nil {
		return nil, err
	}
	q, ok := f.quotes[id]
	if !ok {
		return nil, &APIError{StatusCode: 404, Message: "quote not found"}
	}
	q.Text = input.Text
	q.PageNumber = input.PageNumber
	f.quotes[id] = q
	return &q, nil
}

func (f *fakeAPI) DeleteQuote(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("delete_quote %d", id); err != nil {
		return err
	}
	if _, ok := f.quotes[id]; !ok {
		return &APIError{StatusCode: 404, Message: "quote not found"}
	}
	delete(f.quotes, id)
	return nil
}

func (f *fakeAPI) fill(b entities.Book, in entities.BookInput) entities.Book {
	b.Title = in.Title
	b.Author = in.Author
	b.PersonalRating = in.PersonalRating
	b.ReadingStatus = in.ReadingStatus
	if b.ReadingStatus == "" {
		b.ReadingStatus = entities.ReadingStatusToRead
	}
	b.PagesRead = in.PagesRead

	b.Shelves = []entities.ShelfRef{}
	ids := append([]uint(nil), in.Shelves...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		for _, s := range f.shelves {
			if s.ID == id {
				b.Shelves = append(b.Shelves, entities.ShelfRef{ID: s.ID, Name: s.Name})
			}
		}
	}
	b.Tags = normalize.TagNames(in.Tags)
	sort.Strings(b.Tags)
	b.UpdatedAt = time.Now().UTC()
	return b
}
