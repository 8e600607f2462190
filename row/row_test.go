package row

import "testing"

func TestSize(t *testing.T) {
	if Size != 293 {
		t.Errorf("Size = %d; want 293", Size)
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	orig := Row{ID: 7, Username: "alice", Email: "alice@example.com"}
	buf := make([]byte, Size)
	Serialize(orig, buf)

	got := Deserialize(buf)
	if got != orig {
		t.Errorf("round trip = %+v; want %+v", got, orig)
	}
}

func TestSerializeZeroesPreviousContents(t *testing.T) {
	buf := make([]byte, Size)
	Serialize(Row{ID: 1, Username: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Email: "long@example.com"}, buf)
	Serialize(Row{ID: 2, Username: "bo", Email: "b@x.com"}, buf)

	got := Deserialize(buf)
	want := Row{ID: 2, Username: "bo", Email: "b@x.com"}
	if got != want {
		t.Errorf("got %+v; want %+v (leftover bytes from prior row leaked)", got, want)
	}
}

func TestValidateUsernameTooLong(t *testing.T) {
	r := Row{ID: 1, Username: make37Chars(), Email: "x@y.com"}
	if err := r.Validate(); err == nil {
		t.Errorf("Validate: expected error for over-long username")
	}
}

func TestValidateEmailTooLong(t *testing.T) {
	r := Row{ID: 1, Username: "bob", Email: make300Chars()}
	if err := r.Validate(); err == nil {
		t.Errorf("Validate: expected error for over-long email")
	}
}

func TestValidateAcceptsMaxLengths(t *testing.T) {
	r := Row{ID: 1, Username: makeNChars(MaxUsernameLen), Email: makeNChars(MaxEmailLen)}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate: unexpected error at max lengths: %v", err)
	}
}

func make37Chars() string { return makeNChars(37) }
func make300Chars() string { return makeNChars(300) }

func makeNChars(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}
