package telemetry

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func newRecordingProbe() (*OTELProbe, *tracetest.SpanRecorder, *AppMetrics) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	metrics := NewAppMetrics(prometheus.NewRegistry())
	probe := NewOTELProbe(otelzap.New(zap.NewNop()), metrics).(*OTELProbe)

	return probe, recorder, metrics
}

func TestOTELProbe_RepositorySpan(t *testing.T) {
	RegisterTestingT(t)

	probe, recorder, metrics := newRecordingProbe()

	ctx, span := probe.StartRepositorySpan(context.Background(), "Save", "todo", nil)
	probe.RecordRepositoryOperation(ctx, "Save", "todo", 0, nil)
	span.End()

	ended := recorder.Ended()
	Expect(ended).To(HaveLen(1))
	Expect(ended[0].Name()).To(Equal("repository.todo.Save"))
	Expect(ended[0].Status().Code).To(Equal(codes.Ok))
	Expect(testutil.ToFloat64(metrics.databaseOperations.WithLabelValues("Save", "todo"))).To(Equal(1.0))
}

func TestOTELProbe_ServiceSpanRecordsError(t *testing.T) {
	RegisterTestingT(t)

	probe, recorder, _ := newRecordingProbe()

	ctx, span := probe.StartServiceSpan(context.Background(), "todo", "Toggle", nil)
	probe.RecordServiceOperation(ctx, "todo", "Toggle", 0, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	Expect(ended).To(HaveLen(1))
	Expect(ended[0].Name()).To(Equal("service.todo.Toggle"))
	Expect(ended[0].Status().Code).To(Equal(codes.Error))
}

func TestOTELProbe_BusinessEventAddsSpanEvent(t *testing.T) {
	RegisterTestingT(t)

	probe, recorder, _ := newRecordingProbe()

	ctx, span := probe.StartServiceSpan(context.Background(), "todo", "Create", nil)
	probe.RecordBusinessEvent(ctx, "created", "todo", 42, map[string]interface{}{"completed": false})
	span.End()

	events := recorder.Ended()[0].Events()
	Expect(events).To(HaveLen(1))
	Expect(events[0].Name).To(Equal("todo.created"))
}
