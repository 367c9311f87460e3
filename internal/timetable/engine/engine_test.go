package engine

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrenfield/cadence/internal/engine/registry"
	"github.com/wrenfield/cadence/internal/engine/runtime"
	"github.com/wrenfield/cadence/internal/engine/builtin"
	"github.com/wrenfield/cadence/internal/timetable/domain"
)

func testEngine(t *testing.T, repo RunRepository) *Engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(testingWriter{t}, nil))
	reg := registry.NewRegistry(logger)
	require.NoError(t, reg.RegisterBuiltin(builtin.NewDefaultSolverEngine()))
	require.NoError(t, reg.RegisterBuiltin(builtin.NewSolverEnginePro()))

	exec := runtime.NewExecutor(reg, runtime.NewMetricsCollector(), logger, runtime.DefaultExecutorConfig())

	return New(reg, exec, repo, logger)
}

type testingWriter struct{ t *testing.T }

func (w testingWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func dayAvailability() map[domain.Weekday]domain.DayAvailability {
	avail := make(map[domain.Weekday]domain.DayAvailability)
	for _, day := range []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday} {
		avail[day] = domain.DayAvailability{Available: true, StartTime: "09:00", EndTime: "13:00"}
	}
	return avail
}

func smallEngineInput() Input {
	avail := dayAvailability()
	teachers := []domain.Teacher{
		{ID: "t1", Name: "A", MaxHoursPerWeek: 20, Availability: avail},
		{ID: "t2", Name: "B", MaxHoursPerWeek: 20, Availability: avail},
	}
	classrooms := []domain.Classroom{
		{ID: "r1", Name: "Room 1", Capacity: 40, Type: domain.ClassroomLecture, Availability: avail},
	}
	courses := []domain.Course{
		{
			ID: "c1", Code: "CS101", IsCore: true,
			Sessions: map[domain.SessionType]domain.SessionSpec{
				domain.SessionTheory: {DurationMinutes: 60, SessionsPerWeek: 3},
			},
			AssignedTeachers: []domain.TeacherAssignment{
				{TeacherID: "t1", SessionTypes: map[domain.SessionType]struct{}{domain.SessionTheory: {}}},
				{TeacherID: "t2", SessionTypes: map[domain.SessionType]struct{}{domain.SessionTheory: {}}},
			},
		},
	}

	settings := DefaultSettings()
	settings.WorkingDays = []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday}
	settings.StartTime = "09:00"
	settings.EndTime = "13:00"

	return Input{Teachers: teachers, Classrooms: classrooms, Courses: courses, Settings: settings}
}

func drain(t *testing.T, events <-chan Event, timeout time.Duration) []Event {
	t.Helper()
	var collected []Event
	deadline := time.After(timeout)
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return collected
			}
			collected = append(collected, e)
		case <-deadline:
			t.Fatal("timed out waiting for run to finish")
		}
	}
}

func TestEngine_Run_RejectsEmptyTeachers(t *testing.T) {
	e := testEngine(t, nil)
	in := smallEngineInput()
	in.Teachers = nil

	_, err := e.Run(context.Background(), in)
	require.Error(t, err)
	var engineErr *domain.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, domain.KindInvalidInput, engineErr.Kind)
}

func TestEngine_Run_NoFeasibleSlotsWhenCalendarEmpty(t *testing.T) {
	e := testEngine(t, nil)
	in := smallEngineInput()
	in.Settings.WorkingDays = nil

	_, err := e.Run(context.Background(), in)
	require.Error(t, err)
	var engineErr *domain.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, domain.KindNoFeasibleSlots, engineErr.Kind)
}

func TestEngine_Run_AutoSelectsGreedyForSmallInput(t *testing.T) {
	e := testEngine(t, nil)
	in := smallEngineInput()

	events, err := e.Run(context.Background(), in)
	require.NoError(t, err)

	got := drain(t, events, 5*time.Second)
	require.NotEmpty(t, got)

	started := got[0]
	assert.Equal(t, EventStarted, started.Kind)
	assert.Equal(t, string(greedyAlgorithm), started.Algorithm)
	assert.NotEmpty(t, started.RunID)

	last := got[len(got)-1]
	assert.Equal(t, EventCompleted, last.Kind)
	require.NotNil(t, last.Result)
	assert.Equal(t, RunCompleted, last.Result.Status)
	assert.Empty(t, last.Result.Unplaced)

	for i, e := range got {
		if i == 0 {
			continue
		}
		assert.NotEqual(t, EventStarted, e.Kind, "Started must precede every other event")
	}
}

func TestEngine_Run_SavesTerminalRecordToRepository(t *testing.T) {
	repo := newFakeRepository()
	e := testEngine(t, repo)
	in := smallEngineInput()

	events, err := e.Run(context.Background(), in)
	require.NoError(t, err)
	drain(t, events, 5*time.Second)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, RunCompleted, repo.saved[0].Status)
}

func TestEngine_Cancel_UnknownRunIDIsNoop(t *testing.T) {
	e := testEngine(t, nil)
	assert.NotPanics(t, func() { e.Cancel("does-not-exist") })
}

func TestEngine_Run_CancelViaContextYieldsCancelledEvent(t *testing.T) {
	e := testEngine(t, nil)
	in := smallEngineInput()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events, err := e.Run(ctx, in)
	require.NoError(t, err)

	got := drain(t, events, 5*time.Second)
	require.NotEmpty(t, got)
	last := got[len(got)-1]
	assert.Equal(t, EventCancelled, last.Kind)
	require.NotNil(t, last.Result)
	assert.Equal(t, RunCancelled, last.Result.Status)
	assert.Equal(t, domain.KindCancelled, last.Result.Kind)
}

// greedyAlgorithm mirrors the auto-selection threshold for small inputs
// without importing the solver package's constant directly into the
// assertion (keeps this test focused on the engine's own contract).
const greedyAlgorithm = "greedy"

type fakeRepository struct {
	saved []*RunRecord
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{}
}

func (r *fakeRepository) Save(ctx context.Context, record *RunRecord) error {
	r.saved = append(r.saved, record)
	return nil
}

func (r *fakeRepository) FindByID(ctx context.Context, id string) (*RunRecord, error) {
	for _, rec := range r.saved {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *fakeRepository) ListRecent(ctx context.Context, limit int) ([]*RunRecord, error) {
	if limit > len(r.saved) {
		limit = len(r.saved)
	}
	return r.saved[:limit], nil
}
