// Package sanitizer normalizes user input before it is stored or compared,
// and masks or neutralizes values before they leave the service in logs or exports.
package sanitizer
