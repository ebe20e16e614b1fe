package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jonathan/job-scanner/internal/observability"
	"github.com/jonathan/job-scanner/internal/remote"
	"github.com/jonathan/job-scanner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote implements RemoteExtractor for tests.
type fakeRemote struct {
	result types.ExtractionResult
	err    *remote.Error
	delay  time.Duration
	calls  int
}

func (f *fakeRemote) Extract(ctx context.Context, text string) (types.ExtractionResult, *remote.Error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return types.ExtractionResult{}, remote.Classify(ctx.Err())
		}
	}
	if f.err != nil {
		return types.ExtractionResult{}, f.err
	}
	return f.result, nil
}

func remoteResult(skills ...string) types.ExtractionResult {
	r := types.NewEmptyResult(types.SourceRemote)
	for _, s := range skills {
		r.Skills = append(r.Skills, types.SkillEntry{Name: s})
	}
	return r
}

func TestScan_RemoteSuccess(t *testing.T) {
	fake := &fakeRemote{result: remoteResult("go", "python")}
	o := NewOrchestrator(WithRemote(fake))

	result := o.Scan(context.Background(), types.ExtractionInput{RawText: "We need Go and Python."})

	assert.Equal(t, types.SourceRemote, result.Source)
	require.Len(t, result.Skills, 2)
	assert.Equal(t, 1, fake.calls)
}

func TestScan_FallbackOnFailure(t *testing.T) {
	kinds := []remote.Kind{
		remote.KindTimeout,
		remote.KindServiceUnavailable,
		remote.KindMalformedResponse,
	}

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			fake := &fakeRemote{err: &remote.Error{Kind: kind, Message: "boom"}}
			o := NewOrchestrator(WithRemote(fake))

			result := o.Scan(context.Background(), types.ExtractionInput{
				RawText: "Requires Python 5+ years, Go 2 years.",
			})

			assert.Equal(t, types.SourceLocalFallback, result.Source,
				"source must reflect the path that produced the payload")
			require.Len(t, result.Skills, 2)
			assert.Equal(t, "python", result.Skills[0].Name)
			assert.Equal(t, "go", result.Skills[1].Name)
		})
	}
}

func TestScan_EmptyInputSkipsRemote(t *testing.T) {
	fake := &fakeRemote{result: remoteResult("go")}
	o := NewOrchestrator(WithRemote(fake))

	for _, input := range []string{"", "   \n\t  "} {
		result := o.Scan(context.Background(), types.ExtractionInput{RawText: input})

		assert.Equal(t, types.SourceLocalFallback, result.Source)
		assert.NotNil(t, result.Skills)
		assert.NotNil(t, result.Keywords)
		assert.Empty(t, result.Skills)
	}
	assert.Equal(t, 0, fake.calls, "empty input must not reach the remote service")
}

func TestScan_TimeoutBounded(t *testing.T) {
	// Remote hangs well past the configured timeout; Scan must complete
	// shortly after the timeout with a local fallback result.
	fake := &fakeRemote{result: remoteResult("go"), delay: 5 * time.Second}
	o := NewOrchestrator(WithRemote(fake), WithRemoteTimeout(50*time.Millisecond))

	start := time.Now()
	result := o.Scan(context.Background(), types.ExtractionInput{
		RawText: "Requires Go 2 years and strong fundamentals.",
	})
	elapsed := time.Since(start)

	assert.Equal(t, types.SourceLocalFallback, result.Source)
	assert.Less(t, elapsed, 2*time.Second, "scan must not wait out the hung remote call")
}

func TestScan_NoRemoteConfigured(t *testing.T) {
	o := NewOrchestrator()

	result := o.Scan(context.Background(), types.ExtractionInput{RawText: "Kubernetes and Docker."})
	assert.Equal(t, types.SourceLocalFallback, result.Source)
	assert.NotEmpty(t, result.Skills)
}

func TestScan_NoMergingOfPaths(t *testing.T) {
	// The remote result knows a skill the local lexicon does not; on
	// remote failure none of the remote payload may leak into the result.
	fake := &fakeRemote{
		result: remoteResult("some-remote-only-skill"),
		err:    &remote.Error{Kind: remote.KindServiceUnavailable, Message: "down"},
	}
	o := NewOrchestrator(WithRemote(fake))

	result := o.Scan(context.Background(), types.ExtractionInput{RawText: "Python required."})

	assert.Equal(t, types.SourceLocalFallback, result.Source)
	assert.False(t, result.HasSkill("some-remote-only-skill"))
}

func TestScan_FallbackEventEmitted(t *testing.T) {
	var buf bytes.Buffer
	fake := &fakeRemote{err: &remote.Error{Kind: remote.KindMalformedResponse, Message: "bad shape"}}
	o := NewOrchestrator(WithRemote(fake), WithEvents(observability.New(&buf)))

	o.Scan(context.Background(), types.ExtractionInput{RawText: "Python required."})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.GreaterOrEqual(t, len(lines), 2)

	var event map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &event))
	assert.Equal(t, "extraction_fallback", event["event"])
	assert.Equal(t, "malformed_response", event["reason"])
}

func TestScan_ConcurrentScansIndependent(t *testing.T) {
	fake := &fakeRemote{err: &remote.Error{Kind: remote.KindServiceUnavailable, Message: "down"}}
	o := NewOrchestrator(WithRemote(fake))

	done := make(chan types.ExtractionResult, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- o.Scan(context.Background(), types.ExtractionInput{
				RawText: "Requires Python 5+ years, Go 2 years.",
			})
		}()
	}

	first := <-done
	for i := 1; i < 8; i++ {
		assert.Equal(t, first, <-done, "concurrent scans of identical input must agree")
	}
}
