// Package validator provides small composable validation rules.
//
// A Rule pairs a Check closure with the ValidationError reported when the check
// fails. Apply runs every rule and returns ValidationErrors listing all failed
// fields, so a client sees every problem with a form in one response.
//
//	err := validator.Apply(
//	    validator.ValidEmail("email", in.Email),
//	    validator.Password("password", in.Password, validator.DefaultPasswordPolicy())...,
//	)
//
// Every error carries a TranslationKey for localized messages in the client.
package validator
