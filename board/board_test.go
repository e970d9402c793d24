package board

import (
	"context"
	"testing"
	"time"

	"github.com/labmanager/labmanager-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(id uint, patient, dentist, service, delivery string, value string, paid bool, status models.OrderStatus) models.Order {
	return models.Order{
		ID:           id,
		PatientName:  patient,
		DentistName:  dentist,
		ServiceType:  service,
		DeliveryDate: delivery,
		Value:        decimal.RequireFromString(value),
		Paid:         paid,
		Status:       status,
	}
}

func anaOrder() models.Order {
	return order(1, "Ana", "Dr. Silva", "Coroa Porcelana", "2024-01-10", "500", false, models.StatusInProduction)
}

func sampleOrders() []models.Order {
	return []models.Order{
		anaOrder(),
		order(2, "Bruno", "Dra. Costa", "Protocolo", "2024-02-01", "1200", true, models.StatusInProduction),
		order(3, "Carla", "Dr. Silva", "Conserto", "2023-12-01", "80.50", true, models.StatusReady),
		order(4, "Davi", "Dr. Lima", "Faceta", "2024-03-15", "300", false, models.StatusInProduction),
		order(5, "Eva", "Dra. Costa", "Placa de Bruxismo", "", "0", false, models.StatusInProduction),
	}
}

func TestIsLate(t *testing.T) {
	today := "2024-02-01"

	tests := []struct {
		name  string
		order models.Order
		want  bool
	}{
		{"past date in production", anaOrder(), true},
		{"due today is not late", order(1, "", "", "", "2024-02-01", "0", false, models.StatusInProduction), false},
		{"future date", order(1, "", "", "", "2024-02-02", "0", false, models.StatusInProduction), false},
		{"ready is never late", order(1, "", "", "", "2020-01-01", "0", false, models.StatusReady), false},
		{"missing date sorts before today", order(1, "", "", "", "", "0", false, models.StatusInProduction), true},
		{"unknown status counts as in production", order(1, "", "", "", "2024-01-01", "0", false, ""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLate(tt.order, today))
		})
	}
}

func TestSummarize(t *testing.T) {
	orders := sampleOrders()
	s := Summarize(orders, "2024-02-01")

	assert.True(t, decimal.RequireFromString("1280.50").Equal(s.Received), "received = %s", s.Received)
	assert.True(t, decimal.RequireFromString("800").Equal(s.Outstanding), "outstanding = %s", s.Outstanding)
	// Ana (2024-01-10) and Eva (no date) are late, Carla is ready
	assert.Equal(t, 2, s.Late)
}

func TestSummarizeTotalsCoverWholeSet(t *testing.T) {
	orders := sampleOrders()
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Value)
	}

	for _, paid := range []bool{true, false} {
		for i := range orders {
			orders[i].Paid = paid
		}
		s := Summarize(orders, "2024-02-01")
		assert.True(t, total.Equal(s.Received.Add(s.Outstanding)))
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, "2024-02-01")
	assert.True(t, s.Received.IsZero())
	assert.True(t, s.Outstanding.IsZero())
	assert.Equal(t, 0, s.Late)
}

func TestMatches(t *testing.T) {
	o := anaOrder()

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"ana", true},
		{"ANA", true},
		{"silva", true},
		{"porcelana", true},
		{"dr.", true},
		{"bruno", false},
		{"ana silva", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(o, tt.query))
		})
	}
}

func TestFilter(t *testing.T) {
	orders := sampleOrders()

	active := Filter(orders, "", ModeActive)
	assert.Len(t, active, 4)

	completed := Filter(orders, "", ModeCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, "Carla", completed[0].PatientName)

	silvaActive := Filter(orders, "SILVA", ModeActive)
	require.Len(t, silvaActive, 1)
	assert.Equal(t, "Ana", silvaActive[0].PatientName)

	costa := Filter(orders, "costa", ModeActive)
	require.Len(t, costa, 2)
	assert.Equal(t, uint(2), costa[0].ID, "input order is kept")
	assert.Equal(t, uint(5), costa[1].ID)

	assert.Empty(t, Filter(orders, "nobody", ModeActive))
}

func TestInModeFollowsReadiness(t *testing.T) {
	for _, status := range []models.OrderStatus{models.StatusInProduction, models.StatusReady, ""} {
		o := models.Order{Status: status}
		assert.Equal(t, o.IsReady(), InMode(o, ModeCompleted), "status %q", status)
		assert.Equal(t, !o.IsReady(), InMode(o, ModeActive), "status %q", status)
		if o.IsReady() {
			assert.False(t, IsLate(models.Order{Status: status, DeliveryDate: "2000-01-01"}, "2024-01-01"))
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
		ok    bool
	}{
		{"", ModeActive, true},
		{"active", ModeActive, true},
		{"pedidos", ModeActive, true},
		{"Completed", ModeCompleted, true},
		{"historico", ModeCompleted, true},
		{"archived", ModeActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseMode(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestScenarioLateOrderThenMarkedReady(t *testing.T) {
	today := "2024-02-01"
	orders := []models.Order{anaOrder()}

	v := Build(orders, "", ModeActive, today)
	require.Len(t, v.Orders, 1)
	assert.True(t, v.Orders[0].Late)
	assert.Equal(t, 1, v.Summary.Late)
	assert.True(t, decimal.NewFromInt(500).Equal(v.Summary.Outstanding))
	assert.True(t, v.Summary.Received.IsZero())
	assert.Equal(t, "10/01/2024", v.Orders[0].DeliveryDateDisplay)
	assert.Equal(t, "R$ 500,00", v.Orders[0].ValueDisplay)

	orders[0].Status = models.StatusReady

	active := Build(orders, "", ModeActive, today)
	assert.Empty(t, active.Orders)
	assert.Equal(t, 0, active.Summary.Late)

	completed := Build(orders, "", ModeCompleted, today)
	require.Len(t, completed.Orders, 1)
	assert.Equal(t, models.StatusReady, completed.Orders[0].Status)
	assert.False(t, completed.Orders[0].Late, "ready orders are never late even with a past date")
}

func TestBoardViewBeforeFirstSnapshot(t *testing.T) {
	b := New()
	v := b.View("", ModeActive)
	assert.False(t, v.Loaded)
	assert.Empty(t, v.Orders)
}

func TestBoardReplaceIsWholeSnapshot(t *testing.T) {
	clock := func() time.Time { return time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC) }
	b := New(WithClock(clock))

	b.Replace(sampleOrders())
	assert.Equal(t, 4, b.View("", ModeActive).Count)

	b.Replace([]models.Order{anaOrder()})
	v := b.View("", ModeActive)
	assert.True(t, v.Loaded)
	assert.Equal(t, 1, v.Count)
	assert.Equal(t, "2024-02-01", v.Today)
	assert.True(t, decimal.NewFromInt(500).Equal(v.Summary.Outstanding))
}

func TestBoardReplaceCopiesInput(t *testing.T) {
	b := New()
	orders := []models.Order{anaOrder()}
	b.Replace(orders)

	orders[0].PatientName = "changed"
	snap, ok := b.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "Ana", snap[0].PatientName)
}

func TestBoardRun(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := make(chan []models.Order)
	done := make(chan struct{})
	go func() {
		b.Run(ctx, source)
		close(done)
	}()

	source <- sampleOrders()
	source <- []models.Order{anaOrder()}
	close(source)
	<-done

	snap, ok := b.Snapshot()
	require.True(t, ok)
	assert.Len(t, snap, 1)
}

func TestBoardLocation(t *testing.T) {
	clock := func() time.Time { return time.Date(2024, 2, 1, 1, 0, 0, 0, time.UTC) }
	b := New(WithClock(clock), WithLocation(time.FixedZone("BRT", -3*60*60)))
	assert.Equal(t, "2024-01-31", b.Today())
}
