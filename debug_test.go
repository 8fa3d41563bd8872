package bramble

import (
	"strings"
	"testing"
)

// ---- Debug mode tests ------------------------------------------------------

func TestDebugModeLogsFrameStats(t *testing.T) {
	rt, _, logs := newTestRuntime(t, `
		app.setDebug(true)
		local e = ecs.newEntity("e", ecs.root)
		ecs.addComponent(e, core.Rect2D)
		ecs.addComponent(e, { awake = function() end, update = function() end })
	`, nil)
	rt.Frame(0.1)

	out := logs.String()
	for _, want := range []string{"msg=frame", "update_calls=1", "render_calls=1", "entities=2", "errors=0"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug log missing %q:\n%s", want, out)
		}
	}
}

func TestDebugModeOffIsQuiet(t *testing.T) {
	rt, _, logs := newTestRuntime(t, ``, nil)
	rt.SetDebug(false)
	rt.Frame(0.1)
	if strings.Contains(logs.String(), "msg=frame") {
		t.Errorf("frame stats logged with debug off:\n%s", logs.String())
	}
}

func TestFrameStatsTotal(t *testing.T) {
	st := frameStats{systemTime: 1, sortTime: 2, immediateTime: 3, deferredTime: 4}
	if st.total() != 10 {
		t.Errorf("total = %v, want 10", st.total())
	}
}

func TestHeadlessAudioValidates(t *testing.T) {
	if _, err := (HeadlessAudio{}).Decode([]byte("nope")); err == nil {
		t.Error("expected error for invalid WAV")
	}
	pb, err := HeadlessAudio{}.Decode(wavBytes(wavFormatPCM, 1, 8000, 16, pcm16(0)))
	if err != nil {
		t.Fatal(err)
	}
	if err := pb.Play(true, 0.5); err != nil {
		t.Fatal(err)
	}
	hp := pb.(*headlessPlayback)
	if !hp.playing || !hp.looping || hp.volume != 0.5 {
		t.Errorf("playback = %+v", hp)
	}
	pb.Stop()
	if hp.playing {
		t.Error("Stop should stop playback")
	}
}
