package live

import (
	"testing"

	"github.com/avalonarena/spectate/internal/logging"
	"github.com/avalonarena/spectate/internal/protocol"
)

func testEnvelope(typ string) *protocol.Envelope {
	return &protocol.Envelope{Type: typ}
}

func TestRegistry_DispatchInRegistrationOrder(t *testing.T) {
	r := newRegistry()
	log := logging.Discard()

	var order []string
	r.add(protocol.EventAgentSpeech, func(*protocol.Envelope, any) { order = append(order, "exact1") })
	r.add(protocol.Wildcard, func(*protocol.Envelope, any) { order = append(order, "wild") })
	r.add(protocol.EventAgentSpeech, func(*protocol.Envelope, any) { order = append(order, "exact2") })

	r.dispatch(testEnvelope(protocol.EventAgentSpeech), nil, log)

	want := []string{"exact1", "wild", "exact2"}
	if len(order) != len(want) {
		t.Fatalf("dispatched to %d handlers, expected %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: %s, expected %s", i, order[i], want[i])
		}
	}
}

func TestRegistry_OnlyMatchingHandlersRun(t *testing.T) {
	r := newRegistry()
	log := logging.Discard()

	var speech, vote, wild int
	r.add(protocol.EventAgentSpeech, func(*protocol.Envelope, any) { speech++ })
	r.add(protocol.EventAgentVote, func(*protocol.Envelope, any) { vote++ })
	r.add(protocol.Wildcard, func(*protocol.Envelope, any) { wild++ })

	r.dispatch(testEnvelope(protocol.EventAgentSpeech), nil, log)

	if speech != 1 {
		t.Errorf("speech handler ran %d times", speech)
	}
	if vote != 0 {
		t.Errorf("vote handler ran %d times for a speech event", vote)
	}
	if wild != 1 {
		t.Errorf("wildcard handler ran %d times", wild)
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := newRegistry()
	log := logging.Discard()

	var calls int
	id := r.add(protocol.EventAgentSpeech, func(*protocol.Envelope, any) { calls++ })

	if !r.remove(protocol.EventAgentSpeech, id) {
		t.Error("remove reported nothing removed")
	}
	if r.remove(protocol.EventAgentSpeech, id) {
		t.Error("second remove reported success")
	}

	r.dispatch(testEnvelope(protocol.EventAgentSpeech), nil, log)
	if calls != 0 {
		t.Errorf("removed handler ran %d times", calls)
	}
}

func TestRegistry_PanicDoesNotStopDispatch(t *testing.T) {
	r := newRegistry()
	log := logging.Discard()

	var after int
	r.add(protocol.EventAgentSpeech, func(*protocol.Envelope, any) { panic("bad handler") })
	r.add(protocol.EventAgentSpeech, func(*protocol.Envelope, any) { after++ })

	r.dispatch(testEnvelope(protocol.EventAgentSpeech), nil, log)

	if after != 1 {
		t.Errorf("handler after the panicking one ran %d times, expected 1", after)
	}
}

func TestRegistry_PayloadReachesHandler(t *testing.T) {
	r := newRegistry()
	log := logging.Discard()

	var got any
	r.add(protocol.EventAgentSpeech, func(_ *protocol.Envelope, payload any) { got = payload })

	payload := &protocol.AgentSpeechPayload{PlayerID: 2, Text: "大家好"}
	r.dispatch(testEnvelope(protocol.EventAgentSpeech), payload, log)

	sp, ok := got.(*protocol.AgentSpeechPayload)
	if !ok {
		t.Fatalf("handler received %T", got)
	}
	if sp.PlayerID != 2 || sp.Text != "大家好" {
		t.Errorf("payload mangled: %+v", sp)
	}
}
