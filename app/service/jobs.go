package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// RunReconcileBatch sweeps the processor's recently completed paid sessions
// and runs each through the orchestrator. A session whose webhook was lost
// and whose buyer never returned to confirm gets its purchase created here;
// everything already fulfilled short-circuits to already_exists. Deferred
// and invalid-metadata sessions are counted and left alone.
func (s *FulfillmentService) RunReconcileBatch(ctx context.Context) error {
	since := time.Now().UTC().Add(-s.fulfillmentCfg.ReconcileLookback)

	var firstErr error
	for _, providerClient := range s.providerReg.All() {
		sessions, err := providerClient.ListPaidSessions(ctx, since, int(s.batchSize()))
		if err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		var created, existing, skipped, failed int
		for _, session := range sessions {
			result, err := s.Fulfill(ctx, providerClient.Name(), session.ID)
			if err != nil {
				// Invalid metadata is permanent; retrying next sweep will not fix it.
				if errors.Is(err, ErrInvalidMetadata) {
					s.logger.WithError(err).WithField("session_id", session.ID).Error("Reconcile found unfulfillable session")
					skipped++
					continue
				}
				failed++
				firstErr = keepFirstErr(firstErr, err)
				continue
			}

			switch result.Outcome {
			case OutcomeCreated:
				created++
				s.logger.WithField("session_id", session.ID).Warn("Reconcile repaired a missed completion")
			case OutcomeAlreadyExists:
				existing++
			default:
				skipped++
			}
		}

		s.logger.WithFields(logrus.Fields{
			"provider": providerClient.Name(),
			"scanned":  len(sessions),
			"created":  created,
			"existing": existing,
			"skipped":  skipped,
			"failed":   failed,
		}).Info("Reconcile batch finished")
	}

	return firstErr
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
