package minerapi

// ValidateFrequency validates an ASIC clock frequency in MHz.
// The firmware accepts any positive value; zero would stall the chip.
func ValidateFrequency(mhz uint32) error {
	if mhz == 0 {
		return NewValidationError("frequency must be greater than 0 MHz")
	}
	return nil
}

// ValidateCoreVoltage validates an ASIC core voltage in millivolts.
func ValidateCoreVoltage(mv uint32) error {
	if mv == 0 {
		return NewValidationError("core voltage must be greater than 0 mV")
	}
	return nil
}

// ValidateSettingsUpdate validates a complete settings update.
// Returns a slice of validation errors (empty if valid).
func ValidateSettingsUpdate(update SettingsUpdate) []error {
	var errors []error

	if err := ValidateFrequency(update.FrequencyMHz); err != nil {
		errors = append(errors, err)
	}

	if err := ValidateCoreVoltage(update.CoreVoltageMV); err != nil {
		errors = append(errors, err)
	}

	return errors
}
