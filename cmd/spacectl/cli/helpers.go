package cli

import (
	"encoding/json"
	"io"
	"os"

	"space-booking/internal/domain/location"
	"space-booking/internal/pkg/errs"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// loadLocation reads a stored location snapshot; id and host are optional.
func loadLocation(path string) (*location.Location, error) {
	if path == "" {
		return nil, errs.New("--location is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap shared.LocationSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, errs.Wrapf(err, "decode %s", path)
	}
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	if snap.HostID == uuid.Nil {
		snap.HostID = uuid.New()
	}
	return location.NewLocation(snap.ID, snap.HostID, snap.Name, snap.Timezone, snap.Pricing, snap.Blackout, snap.InstantBooking, snap.CreatedAt)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
