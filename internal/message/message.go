// Package message holds the fixed user-facing messages shared by the
// validation schemas, middleware and handlers. Keeping them in one place is
// what lets tests assert on exact response bodies.
package message

const (
	ValidationError = "Validation error"
	InternalError   = "Internal server error"

	NameIsRequired          = "Name is required"
	NameMustBeString        = "Name must be a string"
	NameLength              = "Name length must be from 5 to 100"
	EmailIsRequired         = "Email is required"
	EmailIsInvalid          = "Email is invalid"
	EmailAlreadyExists      = "Email already exists"
	PasswordIsRequired      = "Password is required"
	PasswordLength          = "Password length must be from 6 to 50"
	PasswordMustBeStrong    = "Password must contain at least 1 lowercase, 1 uppercase, 1 number and 1 symbol"
	ConfirmPasswordMatch    = "Confirm password must be the same as password"
	DateOfBirthMustBeISO    = "Date of birth must be ISO8601"
	EmailOrPasswordWrong    = "Email or password is incorrect"
	OldPasswordIncorrect    = "Old password is incorrect"
	BioMustBeString         = "Bio must be a string"
	BioLength               = "Bio length must be from 1 to 200"
	LocationMustBeString    = "Location must be a string"
	LocationLength          = "Location length must be from 1 to 200"
	WebsiteMustBeURL        = "Website must be a valid URL"
	AvatarMustBeURL         = "Avatar must be a valid URL"
	UsernameMustBeString    = "Username must be a string"
	UsernameInvalid         = "Username must be 4-15 characters and contain only letters, numbers and underscores, not only numbers"
	UsernameExists          = "Username already exists"
	AccessTokenRequired     = "Access token is required"
	RefreshTokenRequired    = "Refresh token is required"
	UsedOrNonexistentToken  = "Used refresh token or not exist"
	EmailVerifyTokenNeeded  = "Email verify token is required"
	EmailVerifyTokenInvalid = "Email verify token is invalid"
	ForgotTokenRequired     = "Forgot password token is required"
	ForgotTokenInvalid      = "Forgot password token is invalid"
	UserNotFound            = "User not found"
	UserNotVerified         = "User not verified"
	UserBanned              = "User is banned"
	InvalidUserID           = "Invalid user id"
	EmailAlreadyVerified    = "Email already verified"

	RegisterSuccessful          = "Register successfully"
	LoginSuccessful             = "Login successfully"
	LogoutSuccessful            = "Logout successfully"
	RefreshTokenSuccessful      = "Refresh token successfully"
	VerifyEmailSuccessful       = "Verify email successfully"
	ResendVerifyEmailSuccessful = "Resend verify email successfully"
	CheckEmailToResetPassword   = "Check email to reset password"
	VerifyForgotPasswordOK      = "Verify forgot password token successfully"
	ResetPasswordSuccessful     = "Reset password successfully"
	ChangePasswordSuccessful    = "Change password successfully"
	GetMeSuccessful             = "Get my profile successfully"
	GetProfileSuccessful        = "Get profile successfully"
	UpdateMeSuccessful          = "Update my profile successfully"
	FollowSuccessful            = "Follow successfully"
	AlreadyFollowed             = "Already followed"
	UnfollowSuccessful          = "Unfollow successfully"
	AlreadyUnfollowed           = "Already unfollowed"

	TweetNotFound              = "Tweet not found"
	InvalidTweetID             = "Invalid tweet id"
	InvalidTweetType           = "Invalid tweet type"
	InvalidTweetAudience       = "Invalid tweet audience"
	ParentIDMustBeValidTweetID = "Parent id must be a valid tweet id"
	ParentIDMustBeNull         = "Parent id must be null"
	ContentMustNotBeEmpty      = "Content must not be empty"
	ContentMustBeEmpty         = "Content must be empty"
	HashtagsMustBeStrings      = "Hashtags must be an array of strings"
	MentionsMustBeUserIDs      = "Mentions must be an array of user ids"
	MediasMustBeMediaObjects   = "Medias must be an array of media objects"
	TweetIsNotPublic           = "Tweet is not public"
	CreateTweetSuccessful      = "Create tweet successfully"
	GetTweetSuccessful         = "Get tweet successfully"

	BookmarkSuccessful   = "Bookmark tweet successfully"
	UnbookmarkSuccessful = "Unbookmark tweet successfully"

	ImageFileRequired = "Image file is required"
	FileTypeInvalid   = "File type is not valid"
	FileTooLarge      = "File size is too large"
	UploadSuccessful  = "Upload successfully"

	LimitInvalid               = "Limit must be between 1 and 100"
	PageInvalid                = "Page must be a positive number"
	ContentIsRequired          = "Content is required"
	GetConversationsSuccessful = "Get conversations successfully"
	SendMessageSuccessful      = "Send message successfully"
)
