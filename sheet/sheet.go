// Package sheet declares the properties of a fifth edition character sheet.
package sheet

import (
	"strconv"

	"github.com/zond/charsheet"
	"github.com/zond/charsheet/property"
	"github.com/zond/charsheet/storage"
)

// Abilities are the ability abbreviations, in sheet order.
var Abilities = []string{"str", "dex", "con", "int", "wis", "cha"}

// Skills maps every skill, in sheet order, to the ability it uses.
var Skills = []struct {
	Name    string
	Ability string
}{
	{"acrobatics", "dex"},
	{"animal_handling", "wis"},
	{"arcana", "int"},
	{"athletics", "str"},
	{"deception", "cha"},
	{"history", "int"},
	{"insight", "wis"},
	{"intimidation", "cha"},
	{"investigation", "int"},
	{"medicine", "wis"},
	{"nature", "int"},
	{"perception", "wis"},
	{"performance", "cha"},
	{"persuasion", "cha"},
	{"religion", "int"},
	{"sleight_of_hand", "dex"},
	{"stealth", "dex"},
	{"survival", "wis"},
}

// FloorDiv divides rounding towards negative infinity, the way modifiers round.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Modifier returns the ability modifier of score.
func Modifier(score int) int {
	return FloorDiv(score-10, 2)
}

// ProficiencyBonus returns the proficiency bonus of a character of level.
func ProficiencyBonus(level int) int {
	return FloorDiv(level-1, 4) + 2
}

type Ability struct {
	Score     *property.Int
	Mod       *property.Int
	Save      *property.Toggle
	SaveBonus *property.Int
}

type Skill struct {
	// Proficiency is 0 without, 1 with proficiency, and 2 with expertise.
	Proficiency *property.Toggle
	Bonus       *property.Int
}

// Sheet is a built character schema, with handles to the properties other
// properties are computed from.
type Sheet struct {
	*property.Registry
	Level             *property.Int
	Proficiency       *property.Int
	Abilities         map[string]*Ability
	Skills            map[string]*Skill
	PassivePerception *property.Int
	Initiative        *property.Int
	Portrait          *property.Image
}

func intAuto(s *property.Schema, name string, deps []property.Property, f func() int) *property.Int {
	return property.RestrictInt(s, property.NewAuto(s, name, deps, func() string {
		return strconv.Itoa(f())
	}))
}

func intText(s *property.Schema, name string) *property.Int {
	return property.RestrictInt(s, property.NewText(s, name))
}

// New declares the sheet in a fresh schema over store and title, and builds it.
func New(store storage.Store, title storage.Title, opts ...property.Option) (*Sheet, error) {
	s := property.NewSchema(store, title, opts...)
	result := &Sheet{
		Abilities: map[string]*Ability{},
		Skills:    map[string]*Skill{},
	}

	property.NewText(s, "class")
	result.Level = intText(s, "level")
	property.NewText(s, "background")
	property.NewText(s, "player")
	property.NewText(s, "race")
	property.NewText(s, "alignment")
	intText(s, "xp")
	result.Portrait = property.NewImage(s, "portrait")

	for _, name := range Abilities {
		score := intText(s, name+"_score")
		result.Abilities[name] = &Ability{
			Score: score,
			Mod: intAuto(s, name+"_mod", []property.Property{score}, func() int {
				return Modifier(score.Value())
			}),
		}
	}

	property.NewToggle(s, "inspiration", 2)
	level := result.Level
	result.Proficiency = intAuto(s, "proficiency", []property.Property{level}, func() int {
		return ProficiencyBonus(level.Value())
	})
	proficiency := result.Proficiency

	for _, name := range Abilities {
		ability := result.Abilities[name]
		ability.Save = property.NewToggle(s, name+"_save", 2)
		ability.SaveBonus = intAuto(s, name+"_save_bonus", []property.Property{ability.Save, proficiency, ability.Mod}, func() int {
			if ability.Save.Value() != 0 {
				return proficiency.Value() + ability.Mod.Value()
			}
			return ability.Mod.Value()
		})
	}

	for _, def := range Skills {
		mod := result.Abilities[def.Ability].Mod
		toggle := property.NewToggle(s, def.Name, 3)
		result.Skills[def.Name] = &Skill{
			Proficiency: toggle,
			Bonus: intAuto(s, def.Name+"_bonus", []property.Property{toggle, proficiency, mod}, func() int {
				return mod.Value() + toggle.Value()*proficiency.Value()
			}),
		}
	}

	perception := result.Skills["perception"].Bonus
	result.PassivePerception = intAuto(s, "passive_perception", []property.Property{perception}, func() int {
		return 10 + perception.Value()
	})
	property.NewLong(s, "proficiencies")

	intText(s, "ac")
	dexMod := result.Abilities["dex"].Mod
	result.Initiative = intAuto(s, "initiative", []property.Property{dexMod}, func() int {
		return dexMod.Value()
	})
	intText(s, "speed")

	intText(s, "max_hp")
	property.NewText(s, "hp")
	property.NewText(s, "temp_hp")
	property.NewText(s, "total_hit_dice")
	property.NewText(s, "hit_dice")
	for _, outcome := range []string{"success", "failure"} {
		for i := 1; i <= 3; i++ {
			property.NewToggle(s, "death_save_"+outcome+"_"+strconv.Itoa(i), 2)
		}
	}

	for i := 1; i <= 3; i++ {
		attack := "attack_" + strconv.Itoa(i)
		property.NewText(s, attack)
		intText(s, attack+"_bonus")
		property.NewText(s, attack+"_damage")
	}
	property.NewLong(s, "attacks")

	for _, coin := range []string{"cp", "sp", "ep", "gp", "pp"} {
		intText(s, coin)
	}
	property.NewLong(s, "equipment")

	for _, trait := range []string{"personality_traits", "ideals", "bonds", "flaws", "features"} {
		property.NewLong(s, trait)
	}

	reg, err := s.Build()
	if err != nil {
		return nil, charsheet.WithStack(err)
	}
	result.Registry = reg
	return result, nil
}
