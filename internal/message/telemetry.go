package message

// TelemetryName identifies what a telemetry value measures and its scaling.
type TelemetryName string

// Telemetry names reported by Scada actors.
const (
	TelemetryRelayState           TelemetryName = "RelayState"
	TelemetryWaterTempFTimes1000  TelemetryName = "WaterTempFTimes1000"
	TelemetryWaterTempCTimes1000  TelemetryName = "WaterTempCTimes1000"
	TelemetryWaterFlowGpmTimes100 TelemetryName = "WaterFlowGpmTimes100"
	TelemetryCurrentRmsMicroAmps  TelemetryName = "CurrentRmsMicroAmps"
	TelemetryPowerW               TelemetryName = "PowerW"
	TelemetryUnknown              TelemetryName = "Unknown"
)

// Valid reports whether n is one of the known telemetry names.
func (n TelemetryName) Valid() bool {
	switch n {
	case TelemetryRelayState,
		TelemetryWaterTempFTimes1000,
		TelemetryWaterTempCTimes1000,
		TelemetryWaterFlowGpmTimes100,
		TelemetryCurrentRmsMicroAmps,
		TelemetryPowerW,
		TelemetryUnknown:
		return true
	}
	return false
}
