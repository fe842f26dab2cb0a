package usecase

// Top-level menu entries.
const (
	optionBrowse = "1"
	optionOrders = "2"
	optionHelp   = "3"
	optionKYC    = "4"
	optionTrack  = "5"
)

const (
	msgWelcome          = "Welcome to Lovtiti Agro Mart"
	msgSelectCategory   = "Select Category:"
	msgListingsBySMS    = "Listings for this category will be sent to you via SMS. Visit lovtitiagromart.com for more."
	msgOrdersBySMS      = "Your recent orders will be sent to you via SMS. Visit lovtitiagromart.com to manage orders."
	msgHelp             = "For help call +234-800-LOVTITI or email support@lovtitiagromart.com"
	msgTrackOrder       = "Enter your order ID in the format ORD-XXXXXX via SMS to 32123 to track your order."
	msgSelectRole       = "Select your role:"
	msgInvalidSelection = "Invalid selection. Please try again."
	msgInvalidRole      = "Invalid role selection."
	msgInvalidStep      = "Invalid step. Please start over."
	msgKYCSubmittedFmt  = "KYC submitted successfully! Your %s registration is under review. You will receive an SMS once verified."
	msgRegistrationFmt  = "%s Registration"
)

var (
	mainMenu = con(
		msgWelcome,
		"1. Browse Listings",
		"2. My Orders",
		"3. Help",
		"4. KYC Registration",
		"5. Track Order",
	)
	categoryMenu = con(
		msgSelectCategory,
		"1. Grains",
		"2. Vegetables",
		"3. Fruits",
		"4. Livestock",
	)
	roleMenu = con(
		msgSelectRole,
		"1. Farmer",
		"2. Distributor",
		"3. Transporter",
		"4. Buyer",
		"5. Veterinarian",
	)
)
