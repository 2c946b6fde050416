package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/ErlanBelekov/campus-marketplace/internal/repository"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// ---- otp ----

type memOtpRepo struct {
	mu      sync.Mutex
	records map[string]domain.OtpRecord
	saves   int
	marks   int
	saveErr error
	// beforeMark runs between the lookup and the conditional update.
	beforeMark func()
}

func newMemOtpRepo() *memOtpRepo {
	return &memOtpRepo{records: make(map[string]domain.OtpRecord)}
}

func (r *memOtpRepo) FindByEmail(_ context.Context, email string) (*domain.OtpRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[email]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *memOtpRepo) FindByEmailAndCode(_ context.Context, email, code string) (*domain.OtpRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[email]
	if !ok || rec.Code != code {
		return nil, nil
	}
	return &rec, nil
}

func (r *memOtpRepo) Save(_ context.Context, rec *domain.OtpRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.records[rec.Email] = *rec
	return nil
}

func (r *memOtpRepo) MarkVerified(_ context.Context, email, code string) (bool, error) {
	if r.beforeMark != nil {
		r.beforeMark()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[email]
	if !ok || rec.Code != code {
		return false, nil
	}
	r.marks++
	rec.Verified = true
	r.records[email] = rec
	return true, nil
}

func (r *memOtpRepo) DeleteExpiredBefore(_ context.Context, cutoff time.Time, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for email, rec := range r.records {
		if n == limit {
			break
		}
		if rec.ExpiresAt.Before(cutoff) {
			delete(r.records, email)
			n++
		}
	}
	return n, nil
}

func (r *memOtpRepo) get(email string) (domain.OtpRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[email]
	return rec, ok
}

type fakeEmailSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, body)
}

func okSender() *fakeEmailSender {
	return &fakeEmailSender{send: func(context.Context, string, string, string) error { return nil }}
}

// ---- records ----

// memDB backs the user, product and order repositories with maps.
type memDB struct {
	mu       sync.Mutex
	users    map[int64]*domain.User
	products map[int64]*domain.Product
	orders   map[int64]*domain.Order
	nextID   int64

	createUserErr    error
	deleteProductErr error
	existsErr        error
}

func newMemDB() *memDB {
	return &memDB{
		users:    make(map[int64]*domain.User),
		products: make(map[int64]*domain.Product),
		orders:   make(map[int64]*domain.Order),
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) userRepo() *memUserRepo       { return &memUserRepo{db} }
func (db *memDB) productRepo() *memProductRepo { return &memProductRepo{db} }
func (db *memDB) orderRepo() *memOrderRepo     { return &memOrderRepo{db} }

func (db *memDB) addUser(u domain.User) *domain.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u.ID = db.id()
	db.users[u.ID] = &u
	return &u
}

func (db *memDB) addProduct(p domain.Product) *domain.Product {
	db.mu.Lock()
	defer db.mu.Unlock()
	p.ID = db.id()
	db.products[p.ID] = &p
	return &p
}

type memUserRepo struct{ db *memDB }

func (r *memUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.createUserErr != nil {
		return nil, r.db.createUserErr
	}
	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return nil, domain.ErrAlreadyRegistered
		}
	}
	cp := *u
	cp.ID = r.db.id()
	r.db.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if r.db.existsErr != nil {
		return false, r.db.existsErr
	}
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *memUserRepo) FindAll(_ context.Context) ([]*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*domain.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id int64, up domain.ProfileUpdate) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Name, u.Programme, u.Branch = up.Name, up.Programme, up.Branch
	u.Year, u.Semester, u.PhoneNo = up.Year, up.Semester, up.PhoneNo
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) SetProfileImagePath(_ context.Context, id int64, path *string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ProfileImagePath = path
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.db.users, id)
	return nil
}

type memProductRepo struct{ db *memDB }

func (r *memProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *p
	cp.ID = r.db.id()
	r.db.products[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memProductRepo) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) FindBySeller(_ context.Context, sellerID int64) ([]*domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.db.products {
		if p.SellerID == sellerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memProductRepo) FindAll(_ context.Context) ([]*domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*domain.Product, 0, len(r.db.products))
	for _, p := range r.db.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memProductRepo) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.products[p.ID]; !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *p
	r.db.products[p.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memProductRepo) SetImagePath(_ context.Context, id int64, path *string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.ImagePath = path
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.deleteProductErr != nil {
		return r.db.deleteProductErr
	}
	if _, ok := r.db.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.db.products, id)
	return nil
}

type memOrderRepo struct{ db *memDB }

func (r *memOrderRepo) Create(_ context.Context, o *domain.Order) (*domain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *o
	cp.ID = r.db.id()
	cp.OrderedAt = time.Now()
	r.db.orders[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memOrderRepo) ListByBuyer(_ context.Context, buyerID int64) ([]*domain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.db.orders {
		if o.BuyerID == buyerID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// memTransactor has no rollback; tests that need one check the error path only.
type memTransactor struct {
	db *memDB
}

func (t *memTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return fn(ctx, repository.Repositories{
		Users:    t.db.userRepo(),
		Products: t.db.productRepo(),
		Orders:   t.db.orderRepo(),
	})
}

// ---- blobs ----

var errBlobBackend = errors.New("disk on fire")

type memBlobs struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	seq       int
	deleted   []string
	storeErr  error
	deleteErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: make(map[string][]byte)}
}

func (b *memBlobs) Store(_ context.Context, kind domain.BlobKind, ownerID int64, data []byte, name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.storeErr != nil {
		return "", b.storeErr
	}
	if len(data) == 0 {
		return "", nil
	}
	b.seq++
	ext := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = name[i:]
	}
	id := kind.Prefix(ownerID) + strconv.Itoa(b.seq) + ext
	b.blobs[string(kind)+"/"+id] = append([]byte(nil), data...)
	return id, nil
}

func (b *memBlobs) Load(_ context.Context, kind domain.BlobKind, id string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[string(kind)+"/"+id]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return data, nil
}

func (b *memBlobs) Delete(_ context.Context, kind domain.BlobKind, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	delete(b.blobs, string(kind)+"/"+id)
	b.deleted = append(b.deleted, string(kind)+"/"+id)
	return nil
}

func (b *memBlobs) has(kind domain.BlobKind, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[string(kind)+"/"+id]
	return ok
}

func (b *memBlobs) put(kind domain.BlobKind, id string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[string(kind)+"/"+id] = data
}

func strPtr(s string) *string { return &s }
