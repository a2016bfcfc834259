package engine

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/pkg/domain"
	"bloodlink/services/matching-svc/internal/events"
)

// Many requests race for one donor and a small bank; every donor and every
// unit must be handed out at most once.
func TestProcessRequest_ConcurrentCheckThenAct(t *testing.T) {
	e, _ := hubEngine(t, []domain.Donor{
		{ID: "only", BloodType: domain.APositive, LocationID: "near", Available: true},
	}, []domain.InventoryEntry{{BloodType: domain.APositive, Total: 5}})

	const n = 40
	ids := make([]string, n)
	for i := range ids {
		ids[i] = create(t, e, domain.APositive, 1, domain.PriorityUrgent).ID
	}

	var wg sync.WaitGroup
	results := make([]*domain.BloodRequest, n)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := e.ProcessRequest(ids[i])
			if err == nil {
				results[i] = r
			}
		}(i)
	}
	wg.Wait()

	var matched, fulfilled, pending int
	for _, r := range results {
		require.NotNil(t, r)
		switch r.Status {
		case domain.StatusMatched:
			matched++
		case domain.StatusFulfilled:
			fulfilled++
		case domain.StatusPending:
			pending++
		}
	}

	assert.Equal(t, 1, matched)
	assert.Equal(t, 5, fulfilled)
	assert.Equal(t, n-6, pending)
	assert.Equal(t, 0, entryFor(e, domain.APositive).Total)
	assert.False(t, donorFor(t, e, "only").Available)
}

func TestConcurrentAdminAndProcessing(t *testing.T) {
	e, _ := hubEngine(t, nil, []domain.InventoryEntry{{BloodType: domain.BPositive, Total: 0}})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = e.AddUnits(domain.BPositive, 1)
		}()
		go func() {
			defer wg.Done()
			req, err := e.CreateRequest(NewRequest{BloodType: domain.BPositive, Units: 1, LocationID: "h", Priority: domain.PriorityUrgent})
			if err == nil {
				_, _ = e.ProcessRequest(req.ID)
			}
		}()
	}
	wg.Wait()

	fulfilled := len(e.ListRequests(domain.StatusFulfilled))
	assert.Equal(t, 20, fulfilled+entryFor(e, domain.BPositive).Total)
}

// gatedPublisher holds the first event of type hold until release is closed.
type gatedPublisher struct {
	recordingPublisher
	hold    events.Type
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (p *gatedPublisher) Publish(evt events.Event) bool {
	if evt.Type == p.hold {
		p.once.Do(func() {
			close(p.entered)
			<-p.release
		})
	}
	return p.recordingPublisher.Publish(evt)
}

// A slow publisher must not let a later transition of the same request
// overtake an earlier one.
func TestEventsFollowCommitOrder(t *testing.T) {
	pub := &gatedPublisher{
		hold:    events.RequestMatched,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	e, _ := hubEngine(t, []domain.Donor{
		{ID: "d1", BloodType: domain.APositive, LocationID: "near", Available: true},
	}, nil, func(o *Options) { o.Publisher = pub })
	req := create(t, e, domain.APositive, 1, domain.PriorityUrgent)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := e.ProcessRequest(req.ID)
		assert.NoError(t, err)
	}()
	<-pub.entered

	var confirmed atomic.Bool
	go func() {
		defer wg.Done()
		_, err := e.ConfirmMatch(req.ID)
		assert.NoError(t, err)
		confirmed.Store(true)
	}()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, confirmed.Load(), "confirmation waits for the match to be published")
	close(pub.release)
	wg.Wait()

	assert.Equal(t, []events.Type{events.RequestCreated, events.RequestMatched, events.MatchConfirmed}, pub.types())
}

// Only the call that actually decides a Pending request reports an attempt.
func TestProcess_ReportsAttemptOnce(t *testing.T) {
	e, _ := hubEngine(t, []domain.Donor{
		{ID: "d1", BloodType: domain.APositive, LocationID: "near", Available: true},
	}, nil)
	req := create(t, e, domain.APositive, 1, domain.PriorityUrgent)

	const n = 16
	var (
		wg       sync.WaitGroup
		attempts atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, attempted, err := e.Process(req.ID)
			assert.NoError(t, err)
			assert.Equal(t, domain.StatusMatched, got.Status)
			if attempted {
				attempts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), attempts.Load())
}
