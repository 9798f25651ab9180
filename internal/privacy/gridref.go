// Package privacy огрубляет точные координаты до ссылки на ячейку сетки.
// Из ссылки нельзя восстановить исходную точку точнее размера ячейки.
package privacy

import (
	"fmt"
	"math"

	"github.com/shenikar/civic_response_system/internal/apperr"
)

// DefaultCellDegrees - около 1.1 км по широте
const DefaultCellDegrees = 0.01

// GridEncoder кодирует координаты в ссылку на ячейку фиксированного размера
type GridEncoder struct {
	cellDegrees float64
}

// NewGridEncoder создает кодировщик; неположительный размер ячейки заменяется значением по умолчанию
func NewGridEncoder(cellDegrees float64) *GridEncoder {
	if cellDegrees <= 0 || cellDegrees > 90 {
		cellDegrees = DefaultCellDegrees
	}
	return &GridEncoder{cellDegrees: cellDegrees}
}

// CellDegrees возвращает размер ячейки в градусах
func (e *GridEncoder) CellDegrees() float64 {
	return e.cellDegrees
}

// Encode возвращает ссылку вида "G0.0100:N5575:E3761". Номера ячеек отсчитываются
// от экватора и нулевого меридиана, полушарие задается буквой.
func (e *GridEncoder) Encode(lat, lon float64) (string, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return "", apperr.Validation("privacy.Encode", "latitude %v out of range", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return "", apperr.Validation("privacy.Encode", "longitude %v out of range", lon)
	}

	latCell := int64(math.Floor(math.Abs(lat) / e.cellDegrees))
	lonCell := int64(math.Floor(math.Abs(lon) / e.cellDegrees))

	ns := "N"
	if lat < 0 {
		ns = "S"
	}
	ew := "E"
	if lon < 0 {
		ew = "W"
	}
	return fmt.Sprintf("G%.4f:%s%d:%s%d", e.cellDegrees, ns, latCell, ew, lonCell), nil
}
