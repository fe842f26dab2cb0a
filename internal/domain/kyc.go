package domain

import "time"

// Field keys collected during KYC.
const (
	FieldFullName            = "fullName"
	FieldPhone               = "phone"
	FieldCountry             = "country"
	FieldAddress             = "address"
	FieldIDNumber            = "idNumber"
	FieldFarmSize            = "farmSize"
	FieldCropTypes           = "cropTypes"
	FieldBusinessLicense     = "businessLicense"
	FieldTaxID               = "taxId"
	FieldStorageCapacity     = "storageCapacity"
	FieldVehicleRegistration = "vehicleRegistration"
	FieldInsurancePolicy     = "insurancePolicy"
	FieldDrivingLicense      = "drivingLicense"
	FieldFleetSize           = "fleetSize"
	FieldBusinessType        = "businessType"
	FieldMonthlyVolume       = "monthlyVolume"
	FieldProfessionalLicense = "professionalLicense"
	FieldYearsOfExperience   = "yearsOfExperience"
	FieldSpecialization      = "specialization"
	FieldWalletAddress       = "walletAddress"
)

const (
	PromptFullName            = "Enter Full Name:"
	PromptPhone               = "Enter Phone Number:"
	PromptCountry             = "Enter Country:"
	PromptAddress             = "Enter Address:"
	PromptIDNumber            = "Enter ID Number:"
	PromptFarmSize            = "Enter Farm Size (acres):"
	PromptCropTypes           = "Enter Crop Types (comma separated):"
	PromptBusinessLicense     = "Enter Business License Number:"
	PromptTaxID               = "Enter Tax ID (optional):"
	PromptStorageCapacity     = "Enter Storage Capacity (tons):"
	PromptVehicleRegistration = "Enter Vehicle Registration Number:"
	PromptInsurancePolicy     = "Enter Insurance Policy Number:"
	PromptDrivingLicense      = "Enter Driving License Number:"
	PromptFleetSize           = "Enter Fleet Size:"
	PromptBusinessType        = "Enter Business Type (optional):"
	PromptMonthlyVolume       = "Enter Monthly Purchase Volume (tons):"
	PromptProfessionalLicense = "Enter Professional License Number:"
	PromptYearsOfExperience   = "Enter Years of Experience:"
	PromptSpecialization      = "Enter Specialization:"
	PromptWalletAddress       = "Enter Wallet Address (Hedera Account ID):"
)

// KYCStep is one entry in a role's collection sequence. Field is the key the
// caller's latest entry is stored under (empty stores nothing) and Next is the
// prompt shown afterwards. The final step of a sequence has no Next.
type KYCStep struct {
	Field string
	Next  string
}

// RoleSpec drives the generic step engine for one role.
type RoleSpec struct {
	Role          Role
	OpeningPrompt string
	Steps         []KYCStep
}

// TerminalStep is the step number on which the submission happens.
func (s RoleSpec) TerminalStep() int {
	return len(s.Steps)
}

// Step returns the 1-based step entry.
func (s RoleSpec) Step(n int) (KYCStep, bool) {
	if n < 1 || n > len(s.Steps) {
		return KYCStep{}, false
	}
	return s.Steps[n-1], true
}

// Fields lists the keys this role stores, in collection order.
func (s RoleSpec) Fields() []string {
	out := make([]string, 0, len(s.Steps))
	for _, st := range s.Steps {
		if st.Field != "" {
			out = append(out, st.Field)
		}
	}
	return out
}

// Transporter, Buyer and Veterinarian open with the phone prompt and discard
// the first answer, so their sequences start with an empty step.
var roleSpecs = map[Role]RoleSpec{
	RoleFarmer: {
		Role:          RoleFarmer,
		OpeningPrompt: PromptFullName,
		Steps: []KYCStep{
			{FieldFullName, PromptPhone},
			{FieldPhone, PromptCountry},
			{FieldCountry, PromptAddress},
			{FieldAddress, PromptIDNumber},
			{FieldIDNumber, PromptFarmSize},
			{FieldFarmSize, PromptCropTypes},
			{FieldCropTypes, PromptWalletAddress},
			{FieldWalletAddress, ""},
		},
	},
	RoleDistributor: {
		Role:          RoleDistributor,
		OpeningPrompt: PromptFullName,
		Steps: []KYCStep{
			{FieldFullName, PromptPhone},
			{FieldPhone, PromptCountry},
			{FieldCountry, PromptAddress},
			{FieldAddress, PromptIDNumber},
			{FieldIDNumber, PromptBusinessLicense},
			{FieldBusinessLicense, PromptTaxID},
			{FieldTaxID, PromptStorageCapacity},
			{FieldStorageCapacity, PromptWalletAddress},
			{FieldWalletAddress, ""},
		},
	},
	RoleTransporter: {
		Role:          RoleTransporter,
		OpeningPrompt: PromptPhone,
		Steps: []KYCStep{
			{"", PromptPhone},
			{FieldPhone, PromptCountry},
			{FieldCountry, PromptAddress},
			{FieldAddress, PromptIDNumber},
			{FieldIDNumber, PromptVehicleRegistration},
			{FieldVehicleRegistration, PromptInsurancePolicy},
			{FieldInsurancePolicy, PromptDrivingLicense},
			{FieldDrivingLicense, PromptFleetSize},
			{FieldFleetSize, PromptWalletAddress},
			{FieldWalletAddress, ""},
		},
	},
	RoleBuyer: {
		Role:          RoleBuyer,
		OpeningPrompt: PromptPhone,
		Steps: []KYCStep{
			{"", PromptPhone},
			{FieldPhone, PromptCountry},
			{FieldCountry, PromptAddress},
			{FieldAddress, PromptIDNumber},
			{FieldIDNumber, PromptBusinessType},
			{FieldBusinessType, PromptMonthlyVolume},
			{FieldMonthlyVolume, PromptWalletAddress},
			{FieldWalletAddress, ""},
		},
	},
	RoleVeterinarian: {
		Role:          RoleVeterinarian,
		OpeningPrompt: PromptPhone,
		Steps: []KYCStep{
			{"", PromptPhone},
			{FieldPhone, PromptCountry},
			{FieldCountry, PromptAddress},
			{FieldAddress, PromptIDNumber},
			{FieldIDNumber, PromptProfessionalLicense},
			{FieldProfessionalLicense, PromptYearsOfExperience},
			{FieldYearsOfExperience, PromptSpecialization},
			{FieldSpecialization, PromptWalletAddress},
			{FieldWalletAddress, ""},
		},
	},
}

// SpecFor returns the collection sequence for a role.
func SpecFor(r Role) (RoleSpec, bool) {
	s, ok := roleSpecs[r]
	return s, ok
}

// Submission is a completed KYC record handed to the persistence sink.
type Submission struct {
	ID          string            `json:"id"`
	SessionID   string            `json:"sessionId"`
	PhoneNumber string            `json:"phoneNumber,omitempty"`
	Role        Role              `json:"role"`
	Fields      map[string]string `json:"fields"`
	SubmittedAt time.Time         `json:"submittedAt"`
}
