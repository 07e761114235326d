package models

// Closed value domains for catalog fields. The empty value means "not set"
// and is stored as NULL; any other value must be one of the declared constants.

// LifecyclePhase is the lifecycle stage of an application.
type LifecyclePhase string

const (
	LifecyclePlanejamento    LifecyclePhase = "PLANEJAMENTO"
	LifecycleDesenvolvimento LifecyclePhase = "DESENVOLVIMENTO"
	LifecycleProducao        LifecyclePhase = "PRODUCAO"
	LifecycleDescontinuado   LifecyclePhase = "DESCONTINUADO"
)

// ValidLifecyclePhases contains all valid lifecycle phases.
var ValidLifecyclePhases = []LifecyclePhase{LifecyclePlanejamento, LifecycleDesenvolvimento, LifecycleProducao, LifecycleDescontinuado}

// IsValid reports whether p is empty or a declared lifecycle phase.
func (p LifecyclePhase) IsValid() bool {
	return p == "" || contains(ValidLifecyclePhases, p)
}

// Criticality is the business criticality of an application, capability or process.
type Criticality string

const (
	CriticalityBaixa   Criticality = "BAIXA"
	CriticalityMedia   Criticality = "MEDIA"
	CriticalityAlta    Criticality = "ALTA"
	CriticalityCritica Criticality = "CRITICA"
)

// ValidCriticalities contains all valid criticality levels.
var ValidCriticalities = []Criticality{CriticalityBaixa, CriticalityMedia, CriticalityAlta, CriticalityCritica}

// IsValid reports whether c is empty or a declared criticality.
func (c Criticality) IsValid() bool {
	return c == "" || contains(ValidCriticalities, c)
}

// Fit rates how well an application or technology suits its purpose.
// Used for technical fit, functional fit and strategic fit.
type Fit string

const (
	FitExcelente Fit = "EXCELENTE"
	FitBom       Fit = "BOM"
	FitRegular   Fit = "REGULAR"
	FitRuim      Fit = "RUIM"
)

// ValidFits contains all valid fit ratings.
var ValidFits = []Fit{FitExcelente, FitBom, FitRegular, FitRuim}

// IsValid reports whether f is empty or a declared fit rating.
func (f Fit) IsValid() bool {
	return f == "" || contains(ValidFits, f)
}

// AutomationLevel describes how automated a business process is.
type AutomationLevel string

const (
	AutomationManual           AutomationLevel = "MANUAL"
	AutomationSemiAutomatizado AutomationLevel = "SEMI_AUTOMATIZADO"
	AutomationAutomatizado     AutomationLevel = "AUTOMATIZADO"
)

// ValidAutomationLevels contains all valid automation levels.
var ValidAutomationLevels = []AutomationLevel{AutomationManual, AutomationSemiAutomatizado, AutomationAutomatizado}

// IsValid reports whether a is empty or a declared automation level.
func (a AutomationLevel) IsValid() bool {
	return a == "" || contains(ValidAutomationLevels, a)
}

// MaturityLevel is the adoption maturity of a technology.
type MaturityLevel string

const (
	MaturityExperimental MaturityLevel = "EXPERIMENTAL"
	MaturityAdotada      MaturityLevel = "ADOTADA"
	MaturityMadura       MaturityLevel = "MADURA"
	MaturityObsoleta     MaturityLevel = "OBSOLETA"
)

// ValidMaturityLevels contains all valid maturity levels.
var ValidMaturityLevels = []MaturityLevel{MaturityExperimental, MaturityAdotada, MaturityMadura, MaturityObsoleta}

// IsValid reports whether m is empty or a declared maturity level.
func (m MaturityLevel) IsValid() bool {
	return m == "" || contains(ValidMaturityLevels, m)
}

// InterfaceType is the integration style of an interface between applications.
type InterfaceType string

const (
	InterfaceREST       InterfaceType = "REST"
	InterfaceSOAP       InterfaceType = "SOAP"
	InterfaceArquivo    InterfaceType = "ARQUIVO"
	InterfaceMensageria InterfaceType = "MENSAGERIA"
	InterfaceBancoDados InterfaceType = "BANCO_DE_DADOS"
	InterfaceOutro      InterfaceType = "OUTRO"
)

// ValidInterfaceTypes contains all valid interface types.
var ValidInterfaceTypes = []InterfaceType{InterfaceREST, InterfaceSOAP, InterfaceArquivo, InterfaceMensageria, InterfaceBancoDados, InterfaceOutro}

// IsValid reports whether t is empty or a declared interface type.
func (t InterfaceType) IsValid() bool {
	return t == "" || contains(ValidInterfaceTypes, t)
}

// Frequency is how often data flows through an interface.
type Frequency string

const (
	FrequencyTempoReal  Frequency = "TEMPO_REAL"
	FrequencyDiaria     Frequency = "DIARIA"
	FrequencySemanal    Frequency = "SEMANAL"
	FrequencyMensal     Frequency = "MENSAL"
	FrequencySobDemanda Frequency = "SOB_DEMANDA"
)

// ValidFrequencies contains all valid frequencies.
var ValidFrequencies = []Frequency{FrequencyTempoReal, FrequencyDiaria, FrequencySemanal, FrequencyMensal, FrequencySobDemanda}

// IsValid reports whether f is empty or a declared frequency.
func (f Frequency) IsValid() bool {
	return f == "" || contains(ValidFrequencies, f)
}

// RelationshipType tags an owner/application edge. Unlike the other enums it is required.
type RelationshipType string

const (
	RelationshipOwner     RelationshipType = "owner"
	RelationshipDeveloper RelationshipType = "developer"
)

// ValidRelationshipTypes contains all valid relationship types.
var ValidRelationshipTypes = []RelationshipType{RelationshipOwner, RelationshipDeveloper}

// IsValid reports whether t is a declared relationship type.
func (t RelationshipType) IsValid() bool {
	return contains(ValidRelationshipTypes, t)
}

// Proficiency bounds for skill links (0 = none, 5 = expert).
const (
	MinProficiency = 0
	MaxProficiency = 5
)

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
