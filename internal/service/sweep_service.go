package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	contracts "habitquest/contracts/mq"
	"habitquest/internal/model"
	"habitquest/pkg/metrics"
	"habitquest/pkg/trace"
)

// SweepService turns missed habit days into penalties. Runs daily after
// midnight for the previous day; the unique (habit, missed_date) constraint
// makes reruns and overlapping sweeps create nothing twice.
type SweepService struct {
	tx        TxRunner
	habits    HabitStore
	penalties PenaltyStore
	events    EventStore
	logger    *zap.Logger
}

func NewSweepService(
	tx TxRunner,
	habits HabitStore,
	penalties PenaltyStore,
	events EventStore,
	logger *zap.Logger,
) *SweepService {
	return &SweepService{
		tx:        tx,
		habits:    habits,
		penalties: penalties,
		events:    events,
		logger:    logger,
	}
}

// SweepYesterday is the scheduled entry point.
func (s *SweepService) SweepYesterday(ctx context.Context) (int, error) {
	yesterday := time.Now().AddDate(0, 0, -1).Format(dateLayout)
	return s.SweepDate(ctx, yesterday)
}

// SweepDate creates a penalty for every active habit with no completion on
// the given date. Each penalty commits in its own transaction so one bad row
// cannot abort the whole run.
func (s *SweepService) SweepDate(ctx context.Context, date string) (int, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return 0, ErrValidation
	}

	missed, err := s.habits.ListMissedOn(ctx, date)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range missed {
		habit := &missed[i]

		penalty := &model.Penalty{
			UserID:      habit.UserID,
			HabitID:     habit.ID,
			Amount:      habit.PenaltyAmount,
			Destination: habit.PenaltyDestination,
			Reason:      fmt.Sprintf("Missed %q on %s", habit.Name, date),
			MissedDate:  date,
		}

		var inserted bool
		err := s.tx.WithTx(ctx, func(ctx context.Context) error {
			var err error
			inserted, err = s.penalties.Insert(ctx, penalty)
			if err != nil {
				return err
			}
			if !inserted {
				return nil
			}

			if err := s.events.InsertPending(ctx, "penalty", penalty.ID,
				contracts.RoutingKeyPenaltyCreated,
				contracts.PenaltyCreatedPayload{
					PenaltyID:  penalty.ID,
					HabitID:    habit.ID,
					UserID:     habit.UserID,
					HabitName:  habit.Name,
					Amount:     penalty.Amount,
					MissedDate: date,
					TraceID:    trace.FromContext(ctx),
				}); err != nil {
				return err
			}

			return nil
		})
		if err != nil {
			s.logger.Error("Failed to create penalty",
				zap.Int64("habit_id", habit.ID),
				zap.String("date", date),
				zap.Error(err),
			)
			continue
		}
		if inserted {
			created++
		}
	}

	metrics.AddPenaltiesCreated(created)
	s.logger.Info("Penalty sweep finished",
		zap.String("date", date),
		zap.Int("missed", len(missed)),
		zap.Int("created", created),
	)
	return created, nil
}
