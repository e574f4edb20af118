package customize

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/vinayak-store/internal/model"
)

var today = time.Date(2026, time.October, 15, 14, 30, 0, 0, time.UTC)

func pujaKit() model.Package {
	return model.Package{
		ID:        "kit-1",
		Name:      "Ganesh Puja Kit",
		BasePrice: 1000,
		Image:     "kit.jpg",
		Items: []model.OptionalItem{
			{Name: "Diya", Price: 100, RemovePrice: 80},
			{Name: "Incense", Price: 60, RemovePrice: 50},
			{Name: "Marigold garland", Price: 300, RemovePrice: 250},
		},
	}
}

func mandapService() model.Service {
	return model.Service{
		ID:               "svc-1",
		Name:             "Mandap decoration",
		Price:            5000,
		DecorationCharge: 1500,
		Items: []model.OptionalItem{
			{Name: "Flower arch", Price: 2000, RemovePrice: 1800},
			{Name: "Lighting", Price: 4000, RemovePrice: 3500},
		},
	}
}

func validBooking() *model.BookingDetails {
	return &model.BookingDetails{Date: "2026-10-20", Time: "18:00", Venue: "Community hall"}
}

func TestPackageConfiguration_PriceAndSavings(t *testing.T) {
	c := NewPackage(pujaKit())
	assert.Equal(t, int64(1000), c.Price())
	assert.Zero(t, c.Savings())

	require.NoError(t, c.Toggle(2))
	require.NoError(t, c.Toggle(0))

	assert.Equal(t, int64(670), c.Price())
	assert.Equal(t, int64(330), c.Savings())
	assert.Equal(t, []int{0, 2}, c.RemovedIndices())
	assert.Equal(t, []string{"Diya", "Marigold garland"}, c.RemovedNames())

	require.NoError(t, c.Toggle(0))
	assert.Equal(t, int64(750), c.Price())
}

func TestServiceConfiguration_DecorationKept(t *testing.T) {
	c := NewService(mandapService())
	assert.Equal(t, int64(6500), c.OriginalPrice())

	require.NoError(t, c.SetRemoved([]int{0, 1}))
	assert.Equal(t, int64(1500), c.Price())
	assert.Equal(t, int64(5000), c.Savings())
}

func TestToggle_OutOfRange(t *testing.T) {
	c := NewPackage(pujaKit())

	assert.ErrorIs(t, c.Toggle(3), ErrOptionOutOfRange)
	assert.ErrorIs(t, c.Toggle(-1), ErrOptionOutOfRange)

	require.NoError(t, c.SetRemoved([]int{1}))
	assert.ErrorIs(t, c.SetRemoved([]int{0, 7}), ErrOptionOutOfRange)
	assert.Equal(t, []int{1}, c.RemovedIndices())
}

func TestVariantKey_Deterministic(t *testing.T) {
	a := NewPackage(pujaKit())
	require.NoError(t, a.Toggle(2))
	require.NoError(t, a.Toggle(0))

	b := NewPackage(pujaKit())
	require.NoError(t, b.SetRemoved([]int{0, 2}))

	c := NewPackage(pujaKit())
	require.NoError(t, c.Toggle(1))

	assert.Equal(t, "custom-0-2", a.VariantKey())
	assert.Equal(t, a.VariantKey(), b.VariantKey())
	assert.NotEqual(t, a.VariantKey(), c.VariantKey())
	assert.Empty(t, NewPackage(pujaKit()).VariantKey())
}

func TestLine_Package(t *testing.T) {
	c := NewPackage(pujaKit())
	require.NoError(t, c.SetRemoved([]int{1}))

	line, err := c.Line(2, nil, today)
	require.NoError(t, err)

	assert.Equal(t, model.KindPackage, line.Kind)
	assert.Equal(t, int64(950), line.UnitPrice)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "custom-1", line.Variant)
	assert.Equal(t, []string{"Incense"}, line.Customization)
	assert.NoError(t, line.Validate())

	_, err = c.Line(1, validBooking(), today)
	assert.Error(t, err)
}

func TestLine_PackageWithoutCustomizationOmitsFields(t *testing.T) {
	line, err := NewPackage(pujaKit()).Line(1, nil, today)
	require.NoError(t, err)

	assert.Empty(t, line.Variant)
	assert.Nil(t, line.Customization)
	assert.Equal(t, PackageLine(pujaKit(), 1), line)
}

func TestLine_ServiceRequiresBooking(t *testing.T) {
	c := NewService(mandapService())

	_, err := c.Line(1, nil, today)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"date", "time", "venue"}, verr.Fields)

	line, err := c.Line(3, validBooking(), today)
	require.NoError(t, err)
	assert.True(t, line.IsBooking())
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, int64(6500), line.UnitPrice)
}

func TestValidateBooking(t *testing.T) {
	tests := []struct {
		name    string
		booking *model.BookingDetails
		fields  []string
		wantErr error
	}{
		{
			name:    "valid",
			booking: validBooking(),
		},
		{
			name:    "today is allowed",
			booking: &model.BookingDetails{Date: "2026-10-15", Time: "09:00", Venue: "Home"},
		},
		{
			name:    "missing time and venue",
			booking: &model.BookingDetails{Date: "2026-10-20", Venue: "  "},
			fields:  []string{"time", "venue"},
		},
		{
			name:    "in the past",
			booking: &model.BookingDetails{Date: "2026-10-14", Time: "09:00", Venue: "Home"},
			wantErr: ErrBookingInPast,
		},
		{
			name:    "bad date",
			booking: &model.BookingDetails{Date: "20/10/2026", Time: "09:00", Venue: "Home"},
			wantErr: ErrBookingDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBooking(tt.booking, today)

			switch {
			case tt.fields != nil:
				var verr *ValidationError
				require.True(t, errors.As(err, &verr), "got %v", err)
				assert.Equal(t, tt.fields, verr.Fields)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuote(t *testing.T) {
	c := NewPackage(pujaKit())
	require.NoError(t, c.SetRemoved([]int{2}))

	q := c.Quote()
	assert.Equal(t, int64(750), q.Price)
	assert.Equal(t, int64(1000), q.OriginalPrice)
	assert.Equal(t, int64(250), q.Savings)
	assert.Equal(t, "custom-2", q.Variant)
	assert.Equal(t, []string{"Marigold garland"}, q.RemovedNames)
}

func TestProductLine(t *testing.T) {
	line := ProductLine(model.Product{ID: "p1", Name: "Camphor", Price: 40}, 0)

	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, model.KindProduct, line.Kind)
	assert.NoError(t, line.Validate())
}
