package semantic

import (
	"math"
	"strconv"
	"strings"

	pb "github.com/qdrant/go-client/qdrant"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
)

// Payload field names. Older collections used supplier-specific keys for the
// battery fields; those are accepted as aliases.
var (
	batteryModelKeys = []string{"battery_model", "chrome_model"}
	batterySKUKeys   = []string{"battery_sku", "chrome_sku"}
	altModelKeys     = []string{"alt_model", "yuasa_model"}
)

// decodeRecord converts a Qdrant payload into a FitmentRecord. Unknown or
// malformed fields decode to their zero values.
func decodeRecord(id string, payload map[string]*pb.Value) domain.FitmentRecord {
	rec := domain.FitmentRecord{
		ID:           id,
		Make:         str(payload, "make"),
		Model:        str(payload, "model"),
		Year:         str(payload, "year"),
		BatteryModel: first(payload, batteryModelKeys),
		BatterySKU:   first(payload, batterySKUKeys),
		AltModel:     first(payload, altModelKeys),
		Document:     str(payload, "document"),
	}
	if d, err := domain.ParseDirection(str(payload, directionKey)); err == nil {
		rec.Direction = d
	}
	return rec
}

func first(payload map[string]*pb.Value, keys []string) string {
	for _, k := range keys {
		if s := str(payload, k); s != "" {
			return s
		}
	}
	return ""
}

// str renders scalar payload values as text; years arrive as strings,
// integers, or doubles depending on who indexed them.
func str(payload map[string]*pb.Value, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	switch k := v.GetKind().(type) {
	case *pb.Value_StringValue:
		return strings.TrimSpace(k.StringValue)
	case *pb.Value_IntegerValue:
		return strconv.FormatInt(k.IntegerValue, 10)
	case *pb.Value_DoubleValue:
		if k.DoubleValue == math.Trunc(k.DoubleValue) {
			return strconv.FormatInt(int64(k.DoubleValue), 10)
		}
		return strconv.FormatFloat(k.DoubleValue, 'f', -1, 64)
	case *pb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	}
	return ""
}
