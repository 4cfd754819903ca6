package extract

import "testing"

const indigoTranscript = `IndiGo Booking Confirmed
Flight 6E 2044 | Terminal 1
Mumbai → Ranchi
Fri, 13 Feb 2026
Departure 06:10 hrs Arrival 08:45 hrs
Mr Rahul Sharma (ADULT)
Ms SONAL SHARMA (ADULT)
PNR: QW12XZ
Check-in baggage 15kg allowed`

func TestFlight(t *testing.T) {
	d := Flight(indigoTranscript)

	if d.Airline != "IndiGo" {
		t.Errorf("Airline = %q, want IndiGo", d.Airline)
	}
	if d.FlightNumber != "6E 2044" {
		t.Errorf("FlightNumber = %q, want \"6E 2044\"", d.FlightNumber)
	}
	if d.PNR != "QW12XZ" {
		t.Errorf("PNR = %q, want QW12XZ", d.PNR)
	}
	if d.Route != "Mumbai → Ranchi" {
		t.Errorf("Route = %q, want \"Mumbai → Ranchi\"", d.Route)
	}
	if d.Date != "13 Feb 2026" {
		t.Errorf("Date = %q, want \"13 Feb 2026\"", d.Date)
	}
	if d.DepartureTime != "06:10" || d.ArrivalTime != "08:45" {
		t.Errorf("times = %q/%q, want 06:10/08:45", d.DepartureTime, d.ArrivalTime)
	}
	if len(d.Passengers) != 2 {
		t.Fatalf("Passengers = %d, want 2", len(d.Passengers))
	}
	if d.Passengers[0].Name != "Mr Rahul Sharma" {
		t.Errorf("Passengers[0] = %q, want \"Mr Rahul Sharma\"", d.Passengers[0].Name)
	}
}

func TestFlightPassengers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "adult marker form",
			text: "Ms ANITA DESAI (ADULT)",
			want: []string{"Ms ANITA DESAI"},
		},
		{
			name: "titled two-word form",
			text: "Traveller: Mr Vikram Seth window seat",
			want: []string{"Mr Vikram Seth"},
		},
		{
			name: "layout vocabulary rejected",
			text: "Mr Baggage Allowed (ADULT)\nMs Customer Support (ADULT)",
			want: nil,
		},
		{
			name: "digits rejected",
			text: "Mr Gate B12 (ADULT)",
			want: nil,
		},
		{
			name: "case-insensitive dedup",
			text: "Mr Rahul Sharma (ADULT)\nMR RAHUL SHARMA (ADULT)",
			want: []string{"Mr Rahul Sharma"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlightPassengers(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d passengers %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i].Name != tt.want[i] {
					t.Errorf("passenger[%d] = %q, want %q", i, got[i].Name, tt.want[i])
				}
			}
		})
	}
}
