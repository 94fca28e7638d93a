package mockapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/Makepad-fr/menuadmin/internal/model"
)

var categories = []string{"Pizza", "Burgers", "Salads", "Desserts", "Drinks", "Sushi"}

// Seed generates a deterministic dataset of roughly n records per resource.
func Seed(seed int64, n int) *Snapshot {
	f := gofakeit.New(seed)
	ids := 0
	nextID := func() model.ID {
		ids++
		return model.ID(strconv.Itoa(ids))
	}
	// uuid.NewRandomFromReader keeps string ids reproducible for a seed.
	uid := func() model.ID {
		u, err := uuid.NewRandomFromReader(strings.NewReader(f.LetterN(16)))
		if err != nil {
			return model.ID(f.UUID())
		}
		return model.ID(u.String())
	}

	snap := &Snapshot{}
	for range max(1, n/3) {
		snap.Restaurants = append(snap.Restaurants, model.Restaurant{
			ID:       nextID(),
			Name:     f.Company(),
			Address:  f.Street(),
			City:     f.City(),
			Phone:    f.Phone(),
			Active:   f.Bool(),
			Featured: f.Number(0, 3) == 0,
		})
	}
	dishes := []func() string{f.Lunch, f.Dinner, f.Dessert, f.Breakfast, f.Snack}
	for i := range n {
		r := snap.Restaurants[i%len(snap.Restaurants)]
		snap.Items = append(snap.Items, model.MenuItem{
			ID:           nextID(),
			Name:         dishes[i%len(dishes)](),
			Description:  f.Sentence(8),
			Category:     f.RandomString(categories),
			Price:        f.Price(3, 40),
			RestaurantID: r.ID,
			OnHomePage:   f.Number(0, 4) == 0,
			Available:    f.Number(0, 5) != 0,
			Popular:      f.Bool(),
		})
	}
	for range n {
		snap.Customers = append(snap.Customers, model.Customer{
			ID:       nextID(),
			Name:     f.Name(),
			Email:    f.Email(),
			Phone:    f.Phone(),
			Blocked:  f.Number(0, 9) == 0,
			Verified: f.Bool(),
		})
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for range max(1, n/2) {
		snap.Coupons = append(snap.Coupons, model.Coupon{
			ID:          uid(),
			Code:        strings.ToUpper(f.LetterN(4)) + strconv.Itoa(f.Number(5, 50)),
			Description: f.Sentence(5),
			Discount:    float64(f.Number(1, 10) * 5),
			ExpiresAt:   base.AddDate(0, f.Number(1, 12), 0).Format(time.DateOnly),
			Active:      f.Bool(),
		})
	}
	statuses := []string{"pending", "approved", "rejected"}
	for range max(1, n/2) {
		c := snap.Customers[f.Number(0, len(snap.Customers)-1)]
		status := f.RandomString(statuses)
		snap.Refunds = append(snap.Refunds, model.Refund{
			ID:           nextID(),
			OrderID:      model.ID(strconv.Itoa(f.Number(10000, 99999))),
			CustomerName: c.Name,
			Amount:       f.Price(5, 120),
			Reason:       f.Sentence(6),
			Status:       status,
			Approved:     status == "approved",
			Processed:    status != "pending",
		})
	}
	for _, p := range []struct{ slug, title string }{
		{"terms", "Terms of Service"},
		{"privacy", "Privacy Policy"},
		{"cookies", "Cookie Policy"},
	} {
		snap.Legal = append(snap.Legal, model.LegalPage{
			ID:        uid(),
			Slug:      p.slug,
			Title:     p.title,
			Body:      f.Paragraph(2, 3, 12, "\n\n"),
			UpdatedAt: base.Format(time.DateOnly),
			Published: p.slug != "cookies",
		})
	}
	return snap
}
