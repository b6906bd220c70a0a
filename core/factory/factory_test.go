package factory

import "testing"

type recorder struct {
	Endpoint string
	Batch    int
}

type recorderConf struct {
	Endpoint string `json:"endpoint"`
	Batch    int    `json:"batch"`
}

func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*recorder]()
	if err := reg.Register("recorder", func(conf map[string]any) (*recorder, error) {
		var c recorderConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &recorder{Endpoint: c.Endpoint, Batch: c.Batch}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{
		Type: "recorder",
		Conf: map[string]any{"endpoint": "http://localhost:8086", "batch": 50},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.Endpoint != "http://localhost:8086" || inst.Batch != 50 {
		t.Fatalf("unexpected instance %+v", inst)
	}
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", nil); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); err == nil {
		t.Fatal("expected unknown type error")
	}
}

func TestDecodeRejectsWrongType(t *testing.T) {
	var c recorderConf
	if err := Decode(map[string]any{"batch": "not-a-number"}, &c); err == nil {
		t.Fatal("expected decode error")
	}
}
