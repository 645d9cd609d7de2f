package navigation

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AttuneLearning/cadence-access/pkg/departments"
	"github.com/AttuneLearning/cadence-access/pkg/observability"
)

// ErrNoSwitcher is returned when the store was built without a department
// switcher.
var ErrNoSwitcher = errors.New("navigation: no department switcher configured")

// SwitchDepartment asks the department service to switch the session to
// targetID and commits the result into the store.
//
// The store enters the switching state immediately and any previous switch
// error is cleared; the selected department and the cached context keep their
// old values until the call resolves, so a failed switch leaves the session
// where it was. Overlapping calls are allowed. On success the last call to
// complete wins the cached context. On failure the error is recorded only if
// no later-started call has already committed a success, so a slow failure
// cannot clobber fresh state.
func (s *Store) SwitchDepartment(ctx context.Context, targetID string) (*departments.SwitchResult, error) {
	if s.switcher == nil {
		return nil, ErrNoSwitcher
	}

	ctx, span := otel.Tracer(observability.TracerName).Start(ctx, "navigation.SwitchDepartment",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("department.id", targetID)))
	defer span.End()

	s.mu.Lock()
	s.switchSeq++
	seq := s.switchSeq
	s.inFlight++
	s.st.IsSwitchingDepartment = true
	s.st.SwitchDepartmentError = ""
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SwitchesInFlight.Inc()
	}
	s.logger.WithFields(map[string]interface{}{
		"departmentId": targetID,
	}).Debug("Switching department")

	start := time.Now()
	result, err := s.switcher.SwitchDepartment(ctx, targetID)
	elapsed := time.Since(start)

	s.mu.Lock()
	s.inFlight--
	if s.inFlight == 0 {
		s.st.IsSwitchingDepartment = false
	}
	if err != nil {
		// A failure leaves the selection and cached context untouched. It
		// records its error only when no call started after it has already
		// committed a success.
		if seq > s.maxSuccessSeq {
			s.st.SwitchDepartmentError = err.Error()
		}
		s.mu.Unlock()

		if s.metrics != nil {
			s.metrics.SwitchesInFlight.Dec()
			s.metrics.ObserveDepartmentSwitch("failure", elapsed)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.WithError(err).WithField("departmentId", targetID).Warn("Department switch failed")
		return nil, err
	}

	if seq > s.maxSuccessSeq {
		s.maxSuccessSeq = seq
	}
	s.st.SelectedDepartmentID = result.CurrentDepartment.DepartmentID
	s.st.CurrentDepartmentName = result.CurrentDepartment.DepartmentName
	s.st.CurrentDepartmentRoles = append([]string{}, result.CurrentDepartment.Roles...)
	s.st.CurrentDepartmentAccessRights = append([]string{}, result.CurrentDepartment.AccessRights...)
	s.st.SwitchDepartmentError = ""
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SwitchesInFlight.Dec()
		s.metrics.ObserveDepartmentSwitch("success", elapsed)
	}
	s.logger.WithFields(map[string]interface{}{
		"departmentId":   result.CurrentDepartment.DepartmentID,
		"departmentName": result.CurrentDepartment.DepartmentName,
	}).Info("Department switch succeeded")
	return result, nil
}
