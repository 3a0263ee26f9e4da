package conversion

import (
	"fmt"

	"mask-mender/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// MatProperties contains information about Mat characteristics
type MatProperties struct {
	Rows     int
	Cols     int
	Channels int
	Type     gocv.MatType
	DataType string
	Empty    bool
}

// GetMatProperties returns detailed information about a Mat
func GetMatProperties(mat *safe.Mat) MatProperties {
	if mat == nil {
		return MatProperties{Empty: true}
	}

	return MatProperties{
		Rows:     mat.Rows(),
		Cols:     mat.Cols(),
		Channels: mat.Channels(),
		Type:     mat.Type(),
		DataType: getDataTypeName(mat.Type()),
		Empty:    mat.Empty(),
	}
}

// FillMat sets every element of every channel to value.
func FillMat(mat *safe.Mat, value uint8) error {
	if err := safe.ValidateMatForOperation(mat, "Mat filling"); err != nil {
		return err
	}

	v := float64(value)
	return mat.Update(func(m *gocv.Mat) {
		m.SetTo(gocv.NewScalar(v, v, v, v))
	})
}

// getDataTypeName returns human-readable name for MatType
func getDataTypeName(matType gocv.MatType) string {
	switch matType {
	case gocv.MatTypeCV8UC1:
		return "8-bit unsigned single channel"
	case gocv.MatTypeCV8UC3:
		return "8-bit unsigned 3-channel"
	case gocv.MatTypeCV8UC4:
		return "8-bit unsigned 4-channel"
	case gocv.MatTypeCV32FC1:
		return "32-bit float single channel"
	case gocv.MatTypeCV32FC3:
		return "32-bit float 3-channel"
	default:
		return fmt.Sprintf("unknown type %d", int(matType))
	}
}
