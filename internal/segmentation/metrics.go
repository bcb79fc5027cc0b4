package segmentation

// DefaultSliceThicknessMM is the assumed thickness of the processed slice.
const DefaultSliceThicknessMM = 2.0

// Metrics are the measurements derived from a final mask.
type Metrics struct {
	AreaPixels int     `json:"area_pixels"`
	VolumeMM3  float64 `json:"volume_mm3"`
	VolumeML   float64 `json:"volume_ml"`
}

// CalculateMetrics treats each foreground pixel as thicknessMM cubic
// millimetres. Only one slice is measured, so this is an approximation.
func CalculateMetrics(m *BinaryMask, thicknessMM float64) Metrics {
	area := m.Count()
	volume := float64(area) * thicknessMM
	return Metrics{
		AreaPixels: area,
		VolumeMM3:  volume,
		VolumeML:   volume / 1000.0,
	}
}
