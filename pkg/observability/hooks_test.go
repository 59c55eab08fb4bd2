package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Arrange hooks
	a := NoopArrangeHooks{}
	a.OnArrangeStart(ctx, "grid", 3)
	a.OnPhase(ctx, "grid", "placing", time.Millisecond, true, nil)
	a.OnArrangeComplete(ctx, "grid", time.Millisecond, nil)

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnArrangeStart(ctx, "grid", 3)
	p.OnArrangeComplete(ctx, "grid", time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "artifact", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/arrange")
	h.OnResponse(ctx, "POST", "/v1/arrange", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Arrange().(NoopArrangeHooks); !ok {
		t.Error("Arrange() should return NoopArrangeHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customArrange := &testArrangeHooks{}
	SetArrangeHooks(customArrange)
	if Arrange() != customArrange {
		t.Error("SetArrangeHooks should set custom hooks")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Arrange().(NoopArrangeHooks); !ok {
		t.Error("Reset() should restore NoopArrangeHooks")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testArrangeHooks{}
	SetArrangeHooks(custom)
	SetArrangeHooks(nil)
	if Arrange() != custom {
		t.Error("SetArrangeHooks(nil) should keep the previous hooks")
	}
}

type testArrangeHooks struct{ NoopArrangeHooks }
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
