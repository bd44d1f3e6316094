package utils

import "errors"

// ValidateProfile sanity-checks the body measurements a plan is computed
// from, to avoid garbage targets from garbage input.
func ValidateProfile(heightCm, weightKg float64, age int) error {
	if heightCm <= 0 || weightKg <= 0 || age <= 0 {
		return errors.New("height, weight and age must be positive")
	}
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return errors.New("height/weight out of plausible range")
	}
	if age > 130 {
		return errors.New("age out of plausible range")
	}
	return nil
}
