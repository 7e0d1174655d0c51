package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/txsandbox/internal/model"
	"github.com/forgo/txsandbox/internal/repository"
)

// TB is the part of testing.TB the factories use. Both *testing.T and
// suite.T satisfy it.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// Factory creates test entities in the database
type Factory struct {
	users      *repository.UserRepository
	orchestras *repository.OrchestraRepository
}

// New creates a new fixture factory
func New(src repository.Source) *Factory {
	return &Factory{
		users:      repository.NewUserRepository(src).WithHashCost(bcrypt.MinCost),
		orchestras: repository.NewOrchestraRepository(src),
	}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Username string
	Password string
}

// WithUsername sets the username
func WithUsername(name string) func(*UserOpts) {
	return func(o *UserOpts) { o.Username = name }
}

// WithPassword sets the password. An empty password stores no hash.
func WithPassword(password string) func(*UserOpts) {
	return func(o *UserOpts) { o.Password = password }
}

// CreateUser creates a user with optional customizations
func (f *Factory) CreateUser(t TB, ctx context.Context, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	o := &UserOpts{
		Username: fmt.Sprintf("user_%s", randomID()),
		Password: "testpass123",
	}
	for _, fn := range opts {
		fn(o)
	}

	req := &model.CreateUserRequest{Username: o.Username}
	if o.Password != "" {
		req.Password = &o.Password
	}

	user, err := f.users.Create(ctx, req)
	if err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}
	return user
}

// ============================================================================
// Orchestra Fixtures
// ============================================================================

// OrchestraOpts customizes orchestra creation
type OrchestraOpts struct {
	Name        string
	Instruments int
}

// WithName sets the orchestra name
func WithName(name string) func(*OrchestraOpts) {
	return func(o *OrchestraOpts) { o.Name = name }
}

// WithInstruments adds n instruments cycling through every type
func WithInstruments(n int) func(*OrchestraOpts) {
	return func(o *OrchestraOpts) { o.Instruments = n }
}

// CreateOrchestra creates an orchestra and its instruments
func (f *Factory) CreateOrchestra(t TB, ctx context.Context, opts ...func(*OrchestraOpts)) *model.Orchestra {
	t.Helper()

	o := &OrchestraOpts{Name: fmt.Sprintf("Orchestra %s", randomID())}
	for _, fn := range opts {
		fn(o)
	}

	orchestra, err := f.orchestras.Create(ctx, &model.CreateOrchestraRequest{Name: o.Name})
	if err != nil {
		t.Fatalf("fixtures: failed to create orchestra: %v", err)
	}

	bought := time.Now().AddDate(-1, 0, 0)
	for i := 0; i < o.Instruments; i++ {
		req := &model.AddInstrumentRequest{
			Type:         model.InstrumentTypes[i%len(model.InstrumentTypes)],
			PurchaseDate: bought.AddDate(0, 0, i),
		}
		inst, err := f.orchestras.AddInstrument(ctx, orchestra.ID, req)
		if err != nil {
			t.Fatalf("fixtures: failed to add instrument: %v", err)
		}
		orchestra.Instruments = append(orchestra.Instruments, *inst)
	}
	return orchestra
}
