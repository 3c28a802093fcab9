package schema

// Field names shared by the auth screens.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldRememberMe      = "rememberMe"
	FieldConfirmPassword = "confirmPassword"
	FieldNewPassword     = "newPassword"
)

const (
	msgPasswordLength = "Password must be at least 8 characters long."
	msgPasswordsMatch = "Passwords do not match."
	msgValidEmail     = "Please enter a valid email address."
)

// Login checks format only; the password just has to be present.
func Login() *Form {
	return &Form{
		Name: "login",
		Fields: []Field{
			{Name: FieldEmail, Label: "Email", Type: TypeEmail, Placeholder: "name@example.com",
				Rules: []Rule{Email("Invalid email address.")}},
			{Name: FieldPassword, Label: "Password", Type: TypePassword,
				Rules: []Rule{Required("Password is required.")}},
			{Name: FieldRememberMe, Label: "Remember me", Type: TypeBoolean},
		},
	}
}

// Registration requires an 8 character password typed twice.
func Registration() *Form {
	return &Form{
		Name: "registration",
		Fields: []Field{
			{Name: FieldEmail, Label: "Email Address", Type: TypeEmail, Placeholder: "name@example.com",
				Rules: []Rule{Email(msgValidEmail)}},
			{Name: FieldPassword, Label: "Password", Type: TypePassword,
				Description: "Must be at least 8 characters long.",
				Rules:       []Rule{MinLength(8, msgPasswordLength)}},
			{Name: FieldConfirmPassword, Label: "Confirm Password", Type: TypePassword},
		},
		Cross: []CrossRule{EqualsField(FieldPassword, FieldConfirmPassword, msgPasswordsMatch)},
	}
}

func ForgotPassword() *Form {
	return &Form{
		Name: "forgot-password",
		Fields: []Field{
			{Name: FieldEmail, Label: "Email Address", Type: TypeEmail, Placeholder: "you@example.com",
				Rules: []Rule{Email(msgValidEmail)}},
		},
	}
}

func ResetPassword() *Form {
	return &Form{
		Name: "reset-password",
		Fields: []Field{
			{Name: FieldNewPassword, Label: "New Password", Type: TypePassword,
				Rules: []Rule{MinLength(8, msgPasswordLength)}},
			{Name: FieldConfirmPassword, Label: "Confirm New Password", Type: TypePassword},
		},
		Cross: []CrossRule{EqualsField(FieldNewPassword, FieldConfirmPassword, msgPasswordsMatch)},
	}
}
