// Package artifact lists the hero artifacts that influence battle resolution.
package artifact

// ID identifies an artifact.
type ID string

// Artifacts with battle effects.
const (
	AmmoCart           ID = "ammo_cart"
	GoldenBow          ID = "golden_bow"
	HideousMask        ID = "hideous_mask"
	WizardHat          ID = "wizard_hat"
	EnchantedHourglass ID = "enchanted_hourglass"
	GoldWatch          ID = "gold_watch"
	Ankh               ID = "ankh"

	EvercoldIcicle  ID = "evercold_icicle"
	EverhotLavaRock ID = "everhot_lava_rock"
	LightningRod    ID = "lightning_rod"
	IceCloak        ID = "ice_cloak"
	FireCloak       ID = "fire_cloak"
	LightningHelm   ID = "lightning_helm"
	HeartOfIce      ID = "heart_of_ice"
	HeartOfFire     ID = "heart_of_fire"
	BroachShielding ID = "broach_of_shielding"

	HolyPendant       ID = "holy_pendant"
	PendantOfFreeWill ID = "pendant_of_free_will"
	PendantOfLife     ID = "pendant_of_life"
	SerenityPendant   ID = "serenity_pendant"
	SeeingEyePendant  ID = "seeing_eye_pendant"
	KineticPendant    ID = "kinetic_pendant"
	PendantOfDeath    ID = "pendant_of_death"
	WandOfNegation    ID = "wand_of_negation"
)

// extraValues holds the magnitude of each artifact: extra spell duration for
// the duration artifacts and a damage percentage for the elemental ones.
var extraValues = map[ID]int{
	WizardHat:          10,
	EnchantedHourglass: 2,
	EvercoldIcicle:     50,
	EverhotLavaRock:    50,
	LightningRod:       50,
	IceCloak:           50,
	FireCloak:          50,
	LightningHelm:      50,
	HeartOfIce:         50,
	HeartOfFire:        50,
}

// ExtraValue returns the magnitude of id, or 0 when it has none.
func ExtraValue(id ID) int { return extraValues[id] }

// Known reports whether id is one of the listed artifacts.
func Known(id ID) bool {
	switch id {
	case AmmoCart, GoldenBow, HideousMask, WizardHat, EnchantedHourglass, GoldWatch, Ankh,
		EvercoldIcicle, EverhotLavaRock, LightningRod, IceCloak, FireCloak, LightningHelm,
		HeartOfIce, HeartOfFire, BroachShielding,
		HolyPendant, PendantOfFreeWill, PendantOfLife, SerenityPendant, SeeingEyePendant,
		KineticPendant, PendantOfDeath, WandOfNegation:
		return true
	}
	return false
}
