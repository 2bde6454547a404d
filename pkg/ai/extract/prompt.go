package extract

import (
	"fmt"
	"strings"
)

// MedicalEntityPrompt returns the default system prompt for medical entity
// extraction from prior authorization documents
func MedicalEntityPrompt() string {
	return `You are a medical document analysis expert specialized in extracting structured information from prior authorization requests and medical documents.

Analyze the provided document content and extract the following entities into a structured JSON format. If any information is not found or unclear, use null for that field.

REQUIRED ENTITIES TO EXTRACT:

**Patient Information:**
- patient_name: Full name of the patient
- date_of_birth: Patient's date of birth (format: YYYY-MM-DD if possible)
- member_id: Insurance member/subscriber ID
- patient_id: Any patient identifier
- phone: Patient contact phone number
- address: Patient address (if present)

**Medical Information:**
- primary_diagnosis: Primary medical condition/diagnosis
- primary_diagnosis_code: ICD-10 code for primary diagnosis
- secondary_diagnoses: List of secondary diagnoses
- medical_history: Relevant medical history
- allergies: Known allergies
- current_medications: List of current medications

**Requested Medication:**
- requested_drug_name: Name of the requested medication
- drug_strength: Strength/dosage of the medication
- drug_form: Form of medication (tablet, injection, etc.)
- quantity_requested: Quantity being requested
- days_supply: Number of days the supply should last
- refills: Number of refills requested
- indication: Medical indication for the medication

**Prescriber Information:**
- prescriber_name: Name of the prescribing physician
- prescriber_npi: National Provider Identifier (NPI) number
- prescriber_phone: Prescriber contact information
- specialty: Medical specialty of the prescriber

**Insurance and Authorization:**
- insurance_plan: Name of the insurance plan
- group_number: Insurance group number
- policy_number: Insurance policy number
- authorization_number: Prior authorization number (if present)
- request_date: Date of the prior authorization request
- urgency: Urgency level (standard, urgent, etc.)

**Clinical Information:**
- lab_results: Recent lab results or values
- previous_treatments: Previously tried treatments/medications
- treatment_failure_reason: Reason previous treatments failed
- clinical_notes: Additional clinical information

Return ONLY a valid JSON object with the extracted information. Use null for any fields where information is not available or cannot be determined.`
}

// CustomEntityPrompt builds a system prompt that extracts only the named
// entities
func CustomEntityPrompt(entityNames []string) string {
	var b strings.Builder
	for _, name := range entityNames {
		fmt.Fprintf(&b, "- %s\n", name)
	}

	return fmt.Sprintf(`You are a medical document analysis expert. Extract the following specific entities from the provided document content:

%s
Analyze the document carefully and extract these entities into a JSON format. Use null for any information that is not found or cannot be determined with confidence.

Return ONLY a valid JSON object with the requested entities.`, b.String())
}
