package game

// MinimumInfluence is the floor every influence mutation clamps to; war
// makes effective influence read as this floor regardless of the stored
// value.
const MinimumInfluence = -60.0

// DiplomaticStatus is the stored state of one ordered civ pair
type DiplomaticStatus string

const (
	StatusPeace         DiplomaticStatus = "Peace"
	StatusWar           DiplomaticStatus = "War"
	StatusDefensivePact DiplomaticStatus = "DefensivePact"
	StatusProtector     DiplomaticStatus = "Protector"
)

// RelationshipLevel is derived, never stored
type RelationshipLevel int

const (
	RelationUnforgivable RelationshipLevel = iota
	RelationEnemy
	RelationAfraid
	RelationCompetitor
	RelationNeutral
	RelationFavorable
	RelationFriend
	RelationAlly
)

func (r RelationshipLevel) String() string {
	switch r {
	case RelationUnforgivable:
		return "Unforgivable"
	case RelationEnemy:
		return "Enemy"
	case RelationAfraid:
		return "Afraid"
	case RelationCompetitor:
		return "Competitor"
	case RelationNeutral:
		return "Neutral"
	case RelationFavorable:
		return "Favorable"
	case RelationFriend:
		return "Friend"
	case RelationAlly:
		return "Ally"
	}
	return "Unknown"
}

// Diplomatic modifier names
const (
	ModifierDeclarationOfFriendship     = "DeclarationOfFriendship"
	ModifierDeclaredFriendshipWithAllies = "DeclaredFriendshipWithOurAllies"
	ModifierDeclaredFriendshipWithEnemies = "DeclaredFriendshipWithOurEnemies"
	ModifierSignedDefensivePact         = "SignedDefensivePact"
	ModifierDefensivePactWithAllies     = "SignedDefensivePactWithOurAllies"
	ModifierDefensivePactWithEnemies    = "SignedDefensivePactWithOurEnemies"
	ModifierDenunciation                = "Denunciation"
	ModifierDenouncedOurAllies          = "DenouncedOurAllies"
	ModifierDenouncedOurEnemies         = "DenouncedOurEnemies"
	ModifierDeclaredWarOnUs             = "DeclaredWarOnUs"
	ModifierMadePeaceWithUs             = "MadePeaceWithUs"
	ModifierAttackedProtectedMinor      = "AttackedProtectedMinor"
	ModifierDestroyedProtectedMinor     = "DestroyedProtectedMinor"
	ModifierBulliedProtectedMinor       = "BulliedProtectedMinor"
)

// Countdown flag names
const (
	FlagDeclarationOfFriendship      = "DeclarationOfFriendship"
	FlagDefensivePact                = "DefensivePact"
	FlagDenunciation                 = "Denunciation"
	FlagPeaceTreaty                  = "PeaceTreaty"
	FlagDeclinedPeace                = "DeclinedPeace"
	FlagRememberBulliedProtectedMinor = "RememberBulliedProtectedMinor"
	FlagRecentlyWithdrewProtection   = "RecentlyWithdrewProtection"
	// FlagRecentlyBullied lives on the bullied city-state civ itself
	FlagRecentlyBullied = "RecentlyBullied"
)

// DiplomacyManager tracks one civ's stance toward one other civ. Every
// mutation goes through methods here so the influence clamp and status
// invariants hold.
type DiplomacyManager struct {
	OwnerCiv string           `json:"ownerCiv"`
	OtherCiv string           `json:"otherCiv"`
	Status   DiplomaticStatus `json:"status"`

	// Influence is meaningful only when the owner is a city-state
	Influence float64 `json:"influence"`

	FlagsCountdown map[string]int     `json:"flagsCountdown,omitempty"`
	Modifiers      map[string]float64 `json:"modifiers,omitempty"`
}

// NewDiplomacyManager starts a peaceful pair
func NewDiplomacyManager(owner, other string) *DiplomacyManager {
	return &DiplomacyManager{
		OwnerCiv:       owner,
		OtherCiv:       other,
		Status:         StatusPeace,
		FlagsCountdown: make(map[string]int),
		Modifiers:      make(map[string]float64),
	}
}

// SetInfluence clamps at the floor
func (d *DiplomacyManager) SetInfluence(value float64) {
	if value < MinimumInfluence {
		value = MinimumInfluence
	}
	d.Influence = value
}

// AddInfluence shifts influence through the clamp
func (d *DiplomacyManager) AddInfluence(delta float64) {
	d.SetInfluence(d.Influence + delta)
}

// GetInfluence reads the floor while at war, the stored value otherwise
func (d *DiplomacyManager) GetInfluence() float64 {
	if d.Status == StatusWar {
		return MinimumInfluence
	}
	return d.Influence
}

// AddModifier accumulates a named opinion contribution
func (d *DiplomacyManager) AddModifier(name string, value float64) {
	d.Modifiers[name] += value
}

// HasModifier reports a present modifier
func (d *DiplomacyManager) HasModifier(name string) bool {
	_, ok := d.Modifiers[name]
	return ok
}

// RemoveModifier drops a named contribution
func (d *DiplomacyManager) RemoveModifier(name string) {
	delete(d.Modifiers, name)
}

// SetFlag starts a countdown; NextTurnFlags removes it at zero
func (d *DiplomacyManager) SetFlag(flag string, turns int) {
	d.FlagsCountdown[flag] = turns
}

// HasFlag reports an active countdown
func (d *DiplomacyManager) HasFlag(flag string) bool {
	return d.FlagsCountdown[flag] > 0
}

// FlagTurns returns the remaining turns of a flag, 0 when inactive
func (d *DiplomacyManager) FlagTurns(flag string) int {
	return d.FlagsCountdown[flag]
}

// TurnsToPeaceTreaty is the remaining cooldown before war is legal again
func (d *DiplomacyManager) TurnsToPeaceTreaty() int {
	return d.FlagsCountdown[FlagPeaceTreaty]
}

// NextTurnFlags decrements every countdown and drops expired ones
func (d *DiplomacyManager) NextTurnFlags() {
	for flag, turns := range d.FlagsCountdown {
		turns--
		if turns <= 0 {
			delete(d.FlagsCountdown, flag)
		} else {
			d.FlagsCountdown[flag] = turns
		}
	}
}

// OpinionOfOtherCiv sums modifiers. Attacking and then destroying the
// same protected minor is one grievance, so the lesser penalty is
// removed from the sum.
func (d *DiplomacyManager) OpinionOfOtherCiv() float64 {
	opinion := 0.0
	for _, v := range d.Modifiers {
		opinion += v
	}
	if d.HasModifier(ModifierAttackedProtectedMinor) && d.HasModifier(ModifierDestroyedProtectedMinor) {
		opinion -= d.Modifiers[ModifierAttackedProtectedMinor]
	}
	return opinion
}

// RelationshipLevel derives the bucket: influence-driven for city-states,
// opinion-driven between majors. War caps a major pair at Enemy.
func (d *DiplomacyManager) RelationshipLevel(g *GameInfo) RelationshipLevel {
	owner := g.Civs[d.OwnerCiv]
	other := g.Civs[d.OtherCiv]
	if owner != nil && owner.IsCityState && other != nil && !other.IsCityState {
		influence := d.GetInfluence()
		switch {
		case influence <= -30:
			return RelationUnforgivable
		case influence < 0:
			return RelationEnemy
		case influence >= 60 && g.AllyOfCityState(owner) == d.OtherCiv:
			return RelationAlly
		case influence >= 30:
			return RelationFriend
		}
		if TributeWillingness(g, owner, other, false) > 0 {
			return RelationAfraid
		}
		return RelationNeutral
	}

	if d.Status == StatusWar {
		return RelationEnemy
	}
	opinion := d.OpinionOfOtherCiv()
	switch {
	case opinion <= -80:
		return RelationUnforgivable
	case opinion <= -40:
		return RelationEnemy
	case opinion <= -15:
		return RelationCompetitor
	case opinion >= 80:
		return RelationAlly
	case opinion >= 40:
		return RelationFriend
	case opinion >= 15:
		return RelationFavorable
	}
	return RelationNeutral
}

// AllyOfCityState returns the major civ holding ally-level influence with
// the city-state, empty when none qualifies.
func (g *GameInfo) AllyOfCityState(cs *Civilization) string {
	best := ""
	bestInfluence := 59.9
	for _, name := range g.CivOrder() {
		civ := g.Civs[name]
		if civ.IsCityState {
			continue
		}
		d, ok := cs.Diplomacy[name]
		if !ok {
			continue
		}
		if inf := d.GetInfluence(); inf > bestInfluence {
			best = name
			bestInfluence = inf
		}
	}
	return best
}

// CanDeclareWar is the legality probe AI and UI run; it never mutates
func CanDeclareWar(g *GameInfo, civ *Civilization, other string) bool {
	otherCiv, ok := g.Civs[other]
	if !ok || civ.Defeated || otherCiv.Defeated {
		return false
	}
	d := civ.GetDiplomacyManager(other)
	if d.Status == StatusWar {
		return false
	}
	return d.TurnsToPeaceTreaty() == 0
}

// DeclareWar flips both managers to war. Returns false as a silent no-op
// when war is not legal.
func DeclareWar(g *GameInfo, civ *Civilization, other string) bool {
	if !CanDeclareWar(g, civ, other) {
		return false
	}
	otherCiv := g.Civs[other]
	mine := civ.GetDiplomacyManager(other)
	theirs := otherCiv.GetDiplomacyManager(civ.Name)
	mine.Status = StatusWar
	theirs.Status = StatusWar
	theirs.AddModifier(ModifierDeclaredWarOnUs, -20)

	// Friendship does not survive a war declaration
	mine.RemoveModifier(ModifierDeclarationOfFriendship)
	theirs.RemoveModifier(ModifierDeclarationOfFriendship)
	delete(mine.FlagsCountdown, FlagDeclarationOfFriendship)
	delete(theirs.FlagsCountdown, FlagDeclarationOfFriendship)
	return true
}

// MakePeace ends a war from both sides and propagates to city-states:
// the proposer's allied city-states also make peace, and non-allied
// city-states still at war with the former enemy lose influence with the
// proposer.
func MakePeace(g *GameInfo, civ *Civilization, other string) bool {
	otherCiv, ok := g.Civs[other]
	if !ok {
		return false
	}
	mine := civ.GetDiplomacyManager(other)
	if mine.Status != StatusWar {
		return false
	}
	theirs := otherCiv.GetDiplomacyManager(civ.Name)
	mine.Status = StatusPeace
	theirs.Status = StatusPeace
	mine.SetFlag(FlagPeaceTreaty, 10)
	theirs.SetFlag(FlagPeaceTreaty, 10)
	theirs.AddModifier(ModifierMadePeaceWithUs, 10)

	for _, name := range g.CivOrder() {
		cs := g.Civs[name]
		if !cs.IsCityState || !cs.IsAtWarWith(other) {
			continue
		}
		if g.AllyOfCityState(cs) == civ.Name {
			csMgr := cs.GetDiplomacyManager(other)
			csMgr.Status = StatusPeace
			otherCiv.GetDiplomacyManager(name).Status = StatusPeace
			csMgr.SetFlag(FlagPeaceTreaty, 10)
		} else if cs.Knows(civ.Name) {
			cs.GetDiplomacyManager(civ.Name).AddInfluence(-10)
		}
	}
	return true
}

// SignDeclarationOfFriendship records the pact on both sides and lets
// every third civ react according to its relationship with each signer.
func SignDeclarationOfFriendship(g *GameInfo, civ *Civilization, other string) bool {
	otherCiv, ok := g.Civs[other]
	if !ok || civ.IsAtWarWith(other) {
		return false
	}
	mine := civ.GetDiplomacyManager(other)
	theirs := otherCiv.GetDiplomacyManager(civ.Name)
	mine.AddModifier(ModifierDeclarationOfFriendship, 35)
	theirs.AddModifier(ModifierDeclarationOfFriendship, 35)
	mine.SetFlag(FlagDeclarationOfFriendship, 30)
	theirs.SetFlag(FlagDeclarationOfFriendship, 30)

	for _, name := range g.CivOrder() {
		third := g.Civs[name]
		if name == civ.Name || name == other || third.IsCityState {
			continue
		}
		if !third.Knows(civ.Name) || !third.Knows(other) {
			continue
		}
		thirdPartyFriendshipReaction(g, third, civ.Name, other)
		thirdPartyFriendshipReaction(g, third, other, civ.Name)
	}
	return true
}

// thirdPartyFriendshipReaction adjusts the third civ's opinion of
// otherSigner based on how it regards signer
func thirdPartyFriendshipReaction(g *GameInfo, third *Civilization, signer, otherSigner string) {
	toOtherSigner := third.GetDiplomacyManager(otherSigner)
	switch third.GetDiplomacyManager(signer).RelationshipLevel(g) {
	case RelationAlly:
		toOtherSigner.AddModifier(ModifierDeclaredFriendshipWithAllies, 15)
	case RelationFriend:
		toOtherSigner.AddModifier(ModifierDeclaredFriendshipWithAllies, 5)
	case RelationEnemy:
		toOtherSigner.AddModifier(ModifierDeclaredFriendshipWithEnemies, -5)
	case RelationUnforgivable:
		toOtherSigner.AddModifier(ModifierDeclaredFriendshipWithEnemies, -15)
	}
}

// SignDefensivePact upgrades both statuses for the given duration
func SignDefensivePact(g *GameInfo, civ *Civilization, other string, duration int) bool {
	otherCiv, ok := g.Civs[other]
	if !ok || civ.IsAtWarWith(other) {
		return false
	}
	mine := civ.GetDiplomacyManager(other)
	theirs := otherCiv.GetDiplomacyManager(civ.Name)
	mine.Status = StatusDefensivePact
	theirs.Status = StatusDefensivePact
	mine.SetFlag(FlagDefensivePact, duration)
	theirs.SetFlag(FlagDefensivePact, duration)
	mine.AddModifier(ModifierSignedDefensivePact, 10)
	theirs.AddModifier(ModifierSignedDefensivePact, 10)

	for _, name := range g.CivOrder() {
		third := g.Civs[name]
		if name == civ.Name || name == other || third.IsCityState {
			continue
		}
		if !third.Knows(civ.Name) || !third.Knows(other) {
			continue
		}
		thirdPartyPactReaction(g, third, civ.Name, other)
		thirdPartyPactReaction(g, third, other, civ.Name)
	}
	return true
}

func thirdPartyPactReaction(g *GameInfo, third *Civilization, signer, otherSigner string) {
	toOtherSigner := third.GetDiplomacyManager(otherSigner)
	switch third.GetDiplomacyManager(signer).RelationshipLevel(g) {
	case RelationAlly:
		toOtherSigner.AddModifier(ModifierDefensivePactWithAllies, 5)
	case RelationFriend:
		toOtherSigner.AddModifier(ModifierDefensivePactWithAllies, 2)
	case RelationEnemy, RelationUnforgivable:
		toOtherSigner.AddModifier(ModifierDefensivePactWithEnemies, -15)
	}
}

// Denounce publicly condemns the other civ
func Denounce(g *GameInfo, civ *Civilization, other string) bool {
	otherCiv, ok := g.Civs[other]
	if !ok {
		return false
	}
	mine := civ.GetDiplomacyManager(other)
	theirs := otherCiv.GetDiplomacyManager(civ.Name)
	theirs.AddModifier(ModifierDenunciation, -35)
	mine.SetFlag(FlagDenunciation, 30)
	theirs.SetFlag(FlagDenunciation, 30)

	for _, name := range g.CivOrder() {
		third := g.Civs[name]
		if name == civ.Name || name == other || third.IsCityState {
			continue
		}
		if !third.Knows(civ.Name) || !third.Knows(other) {
			continue
		}
		toDenouncer := third.GetDiplomacyManager(civ.Name)
		switch third.GetDiplomacyManager(other).RelationshipLevel(g) {
		case RelationAlly:
			toDenouncer.AddModifier(ModifierDenouncedOurAllies, -15)
		case RelationFriend:
			toDenouncer.AddModifier(ModifierDenouncedOurAllies, -5)
		case RelationEnemy:
			toDenouncer.AddModifier(ModifierDenouncedOurEnemies, 5)
		case RelationUnforgivable:
			toDenouncer.AddModifier(ModifierDenouncedOurEnemies, 15)
		}
	}
	return true
}

// PledgeProtection marks a major civ as protector of a city-state
func PledgeProtection(g *GameInfo, protector *Civilization, cityState string) bool {
	cs, ok := g.Civs[cityState]
	if !ok || !cs.IsCityState || protector.IsCityState {
		return false
	}
	d := protector.GetDiplomacyManager(cityState)
	if d.Status == StatusWar || d.HasFlag(FlagRecentlyWithdrewProtection) {
		return false
	}
	d.Status = StatusProtector
	return true
}

// WithdrawProtection reverts a protector to peace with a cooldown before
// re-pledging
func WithdrawProtection(g *GameInfo, protector *Civilization, cityState string) bool {
	d := protector.GetDiplomacyManager(cityState)
	if d.Status != StatusProtector {
		return false
	}
	d.Status = StatusPeace
	d.SetFlag(FlagRecentlyWithdrewProtection, 20)
	return true
}

// ProtectorsOf lists the major civs currently pledged to the city-state
func ProtectorsOf(g *GameInfo, cityState string) []*Civilization {
	var out []*Civilization
	for _, name := range g.CivOrder() {
		civ := g.Civs[name]
		if civ.IsCityState {
			continue
		}
		if d, ok := civ.Diplomacy[cityState]; ok && d.Status == StatusProtector {
			out = append(out, civ)
		}
	}
	return out
}
