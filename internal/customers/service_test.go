package customers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/crm-backend/internal/validation"
	"github.com/angelmondragon/crm-backend/pkg/db"
	"github.com/angelmondragon/crm-backend/pkg/db/dbtest"
	"github.com/angelmondragon/crm-backend/pkg/db/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn), Tx: db.Wrap(conn)})
	require.NoError(t, err)
	return svc, conn
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.EqualError(t, err, "customer repository required")

	_, err = NewService(ServiceParams{Repo: NewRepository(nil)})
	require.EqualError(t, err, "transaction runner required")
}

func TestCreateCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.CreateCustomer(ctx, CreateInput{Name: "Alice", Email: "alice@example.com", Phone: strPtr("+1234567890")})
	require.NoError(t, err)
	require.Equal(t, MsgCreated, res.Message)
	require.Empty(t, res.Errors)
	require.NotNil(t, res.Customer)
	require.Equal(t, "+1234567890", res.Customer.Phone)

	res, err = svc.CreateCustomer(ctx, CreateInput{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	require.Equal(t, "", res.Customer.Phone)

	res, err = svc.CreateCustomer(ctx, CreateInput{Name: "Alice Again", Email: "alice@example.com", Phone: strPtr("abc")})
	require.NoError(t, err)
	require.Nil(t, res.Customer)
	require.Equal(t, MsgValidationFailed, res.Message)
	require.Equal(t, []string{validation.MsgInvalidPhone, validation.MsgEmailExists}, res.Errors)
}

// racingRepo hides existing emails from the pre-check so the unique index decides.
type racingRepo struct {
	Repository
}

func (r racingRepo) EmailExists(context.Context, string) (bool, error) {
	return false, nil
}

func (r racingRepo) WithTx(tx *gorm.DB) Repository {
	return racingRepo{Repository: r.Repository.WithTx(tx)}
}

func TestCreateCustomerDuplicateLostRace(t *testing.T) {
	conn := dbtest.Open(t)
	repo := racingRepo{Repository: NewRepository(conn)}
	svc, err := NewService(ServiceParams{Repo: repo, Tx: db.Wrap(conn)})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.CreateCustomer(ctx, CreateInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	res, err := svc.CreateCustomer(ctx, CreateInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	require.Nil(t, res.Customer)
	require.Equal(t, MsgValidationFailed, res.Message)
	require.Equal(t, []string{validation.MsgEmailExists}, res.Errors)
}

func TestBulkCreateCustomersPartialSuccess(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, CreateInput{Name: "Existing", Email: "taken@example.com"})
	require.NoError(t, err)

	res, err := svc.BulkCreateCustomers(ctx, []CreateInput{
		{Name: "One", Email: "one@example.com"},
		{Name: "Two", Email: "taken@example.com", Phone: strPtr("bad")},
		{Name: "Three", Email: "three@example.com", Phone: strPtr("555-000-1212")},
		{Name: "Dup", Email: "one@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, res.Customers, 2)
	require.Equal(t, "One", res.Customers[0].Name)
	require.Equal(t, "Three", res.Customers[1].Name)
	require.Equal(t, []string{
		"Row 2: Invalid phone format.; Email already exists.",
		"Row 4: Email already exists.",
	}, res.Errors)

	var count int64
	require.NoError(t, conn.Model(&models.Customer{}).Count(&count).Error)
	require.EqualValues(t, 3, count)
}

func TestBulkCreateCustomersRaceKeepsEarlierRows(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{Repo: racingRepo{Repository: NewRepository(conn)}, Tx: db.Wrap(conn)})
	require.NoError(t, err)

	res, err := svc.BulkCreateCustomers(context.Background(), []CreateInput{
		{Name: "One", Email: "one@example.com"},
		{Name: "Again", Email: "one@example.com"},
		{Name: "Two", Email: "two@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, res.Customers, 2)
	require.Equal(t, []string{"Row 2: Email already exists."}, res.Errors)

	var count int64
	require.NoError(t, conn.Model(&models.Customer{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestBulkCreateCustomersEmptyInput(t *testing.T) {
	svc, _ := newTestService(t)
	res, err := svc.BulkCreateCustomers(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, res.Customers)
	require.NotNil(t, res.Errors)
}

type failingTx struct{ err error }

func (f failingTx) WithTx(context.Context, func(tx *gorm.DB) error) error { return f.err }

func TestDeleteInactiveWrapsStoreFailure(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn), Tx: failingTx{err: errors.New("db down")}})
	require.NoError(t, err)

	_, err = svc.DeleteInactive(context.Background(), time.Now())
	require.ErrorContains(t, err, "delete inactive customers")
}

func TestDeleteInactive(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, CreateInput{Name: "Idle", Email: "idle@example.com"})
	require.NoError(t, err)

	deleted, err := svc.DeleteInactive(ctx, time.Now().AddDate(-1, 0, 0))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	var count int64
	require.NoError(t, conn.Model(&models.Customer{}).Count(&count).Error)
	require.Zero(t, count)
}
