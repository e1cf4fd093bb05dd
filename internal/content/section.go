package content

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var defaultFiles embed.FS

// FieldKind 决定后台编辑器使用的控件
type FieldKind string

const (
	KindText       FieldKind = "text"
	KindTextarea   FieldKind = "textarea"
	KindTextList   FieldKind = "text-list"
	KindObjectList FieldKind = "object-list"
	// KindObjectMap 表示以名称为键的分组对象，例如服务分类
	KindObjectMap FieldKind = "object-map"
)

// Field describes one editable control. For list and map kinds, Item holds
// the fields of each element with paths relative to the element.
type Field struct {
	Label string    `json:"label"`
	Path  string    `json:"path"`
	Kind  FieldKind `json:"kind"`
	Item  []Field   `json:"item,omitempty"`
	// Keys 为 object-map 指定展示顺序，未列出的键按字母序排在后面
	Keys []string `json:"keys,omitempty"`
}

// Section binds a content document key to its default value and editor layout.
type Section struct {
	Name       string
	Title      string
	Collection string
	Key        string
	// SeedOnMissing writes the default back the first time an editor loads a missing document.
	SeedOnMissing bool
	Fields        []Field

	defaults Tree
}

// Default returns the in-code fallback document. Callers must not mutate it.
func (s *Section) Default() Tree {
	return s.defaults
}

// ID returns the "collection/key" identifier used in logs.
func (s *Section) ID() string {
	return s.Collection + "/" + s.Key
}

const (
	SectionHome           = "home"
	SectionAbout          = "about"
	SectionServices       = "services"
	SectionProduct        = "product"
	SectionCompanies      = "companies"
	SectionContact        = "contact"
	SectionSocialServices = "social-services"

	// ProductsCollection 保存独立的产品记录
	ProductsCollection = "products"
	// ContactsCollection 保存前台联系表单提交
	ContactsCollection = "contacts"
)

func text(label, path string) Field     { return Field{Label: label, Path: path, Kind: KindText} }
func textarea(label, path string) Field { return Field{Label: label, Path: path, Kind: KindTextarea} }
func textList(label, path string) Field { return Field{Label: label, Path: path, Kind: KindTextList} }
func objectList(label, path string, item ...Field) Field {
	return Field{Label: label, Path: path, Kind: KindObjectList, Item: item}
}

var iconTitleDescription = []Field{
	text("Icon", "icon"),
	text("Title", "title"),
	textarea("Description", "description"),
}

var titleDescriptionImpact = []Field{
	text("Title", "title"),
	textarea("Description", "description"),
	text("Impact", "impact"),
}

var sections = []*Section{
	{
		Name: SectionHome, Title: "Home", Collection: "settings", Key: "home",
		Fields: []Field{
			text("Hero title", "hero.title"),
			text("Hero subtitle", "hero.subtitle"),
			textarea("Hero description", "hero.description"),
			text("Welcome title", "welcome.title"),
			textarea("Welcome subtitle", "welcome.subtitle"),
			objectList("Features", "welcome.features", iconTitleDescription...),
			text("Cardorium title", "cardorium.title"),
			textarea("Cardorium description", "cardorium.description"),
			textList("Cardorium benefits", "cardorium.benefits"),
			text("Affiliations title", "affiliations.title"),
			textarea("Affiliations description", "affiliations.description"),
			objectList("Organizations", "affiliations.organizations",
				text("Name", "name"), textarea("Description", "description")),
			text("Experience title", "experience.title"),
			textarea("Experience description", "experience.description"),
		},
	},
	{
		Name: SectionAbout, Title: "About", Collection: "settings", Key: "about",
		Fields: []Field{
			text("Hero title", "hero.title"),
			text("Hero subtitle", "hero.subtitle"),
			text("Professional title", "professional.title"),
			text("Profile image", "professional.image"),
			text("Position", "professional.position"),
			textList("Background", "professional.background"),
			textList("Qualifications", "professional.qualifications"),
			text("Philosophy title", "philosophy.title"),
			textarea("Philosophy description", "philosophy.description"),
			objectList("Approaches", "philosophy.approaches",
				text("Title", "title"), textarea("Quote", "quote")),
			text("Achievements title", "achievements.title"),
			objectList("Achievements", "achievements.items", iconTitleDescription...),
			text("Vision title", "vision.title"),
			textarea("Vision quote", "vision.quote"),
		},
	},
	{
		Name: SectionServices, Title: "Services", Collection: "settings", Key: "services",
		Fields: []Field{
			text("Hero title", "hero.title"),
			text("Hero subtitle", "hero.subtitle"),
			text("Approach title", "approach.title"),
			textarea("Approach description", "approach.description"),
			objectList("Approach cards", "approach.cards",
				text("Title", "title"), textarea("Description", "description")),
			{
				Label: "Service categories", Path: "categories", Kind: KindObjectMap,
				Keys: []string{"wellness", "chronic", "specialized", "preventive"},
				Item: []Field{
					text("Category title", "title"),
					objectList("Services", "services",
						text("Title", "title"),
						textarea("Description", "description"),
						textList("Benefits", "benefits")),
				},
			},
		},
	},
	{
		Name: SectionProduct, Title: "Products", Collection: "settings", Key: "product",
		Fields: productFields(),
	},
	{
		Name: SectionCompanies, Title: "Companies", Collection: "settings", Key: "companies",
		SeedOnMissing: true,
		Fields: []Field{
			text("Hero title", "hero.title"),
			text("Hero subtitle", "hero.subtitle"),
			objectList("Companies", "companies",
				text("Name", "name"),
				text("Position", "position"),
				text("Type", "type"),
				text("Period", "period"),
				textarea("Description", "description"),
				textList("Affiliates", "affiliates")),
		},
	},
	{
		Name: SectionContact, Title: "Contact", Collection: "content", Key: "contact",
		Fields: []Field{
			text("Hero title", "hero.title"),
			text("Hero subtitle", "hero.subtitle"),
			text("Street", "contactInfo.address.street"),
			text("City", "contactInfo.address.city"),
			text("State", "contactInfo.address.state"),
			text("Country", "contactInfo.address.country"),
			text("Phone", "contactInfo.phone"),
			text("Email", "contactInfo.email"),
		},
	},
	{
		Name: SectionSocialServices, Title: "Social Services", Collection: "social_services", Key: "content",
		Fields: []Field{
			text("Hero title", "hero.title"),
			text("Hero subtitle", "hero.subtitle"),
			text("Intro title", "intro.title"),
			textarea("Intro description", "intro.description"),
			text("GENOME title", "genome.title"),
			textarea("GENOME description", "genome.description"),
			textarea("GENOME about", "genome.about"),
			textarea("GENOME contribution", "genome.contribution"),
			objectList("GENOME activities", "genome.activities", titleDescriptionImpact...),
			text("Temple title", "temple.title"),
			textarea("Temple description", "temple.description"),
			textarea("Temple quote", "temple.quote"),
			objectList("Temple initiatives", "temple.initiatives", titleDescriptionImpact...),
			textarea("Volunteer call", "temple.volunteer"),
			objectList("Events", "events",
				text("Title", "title"),
				text("Date", "date"),
				text("Location", "location"),
				textarea("Description", "description")),
		},
	},
}

var defaultFileNames = map[string]string{
	SectionHome:           "home.yaml",
	SectionAbout:          "about.yaml",
	SectionServices:       "services.yaml",
	SectionProduct:        "product.yaml",
	SectionCompanies:      "companies.yaml",
	SectionContact:        "contact.yaml",
	SectionSocialServices: "social_services.yaml",
}

var (
	byName          map[string]*Section
	productTemplate Tree
)

func init() {
	byName = make(map[string]*Section, len(sections))
	for _, s := range sections {
		s.defaults = mustLoadDefault(defaultFileNames[s.Name])
		byName[s.Name] = s
	}
	productTemplate = mustLoadDefault("product_record.yaml")
}

func productFields() []Field {
	return []Field{
		text("Hero title", "hero.title"),
		text("Hero subtitle", "hero.subtitle"),
		text("Introduction title", "introduction.title"),
		textList("Introduction paragraphs", "introduction.description"),
		text("Introduction image", "introduction.image"),
		text("Benefits title", "benefits.title"),
		textarea("Benefits subtitle", "benefits.subtitle"),
		objectList("Benefits", "benefits.items", iconTitleDescription...),
		text("Ingredients title", "ingredients.title"),
		objectList("Ingredients", "ingredients.items",
			text("Name", "name"), textarea("Description", "description")),
		text("Synergistic action title", "synergisticAction.title"),
		textList("Synergistic action paragraphs", "synergisticAction.description"),
		text("Quality assurance title", "synergisticAction.qualityAssurance.title"),
		textarea("Quality assurance description", "synergisticAction.qualityAssurance.description"),
		text("Usage title", "usage.title"),
		text("Dosage title", "usage.dosage.title"),
		textarea("Dosage description", "usage.dosage.description"),
	}
}

// ProductFields lists the controls of a product record form.
func ProductFields() []Field {
	return productFields()
}

// ProductTemplate returns the blank shape of a new product record.
func ProductTemplate() Tree {
	return productTemplate
}

func mustLoadDefault(name string) Tree {
	tree, err := loadDefault(name)
	if err != nil {
		panic(err)
	}
	return tree
}

func loadDefault(name string) (Tree, error) {
	raw, err := defaultFiles.ReadFile("defaults/" + name)
	if err != nil {
		return nil, fmt.Errorf("read default %s: %w", name, err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode default %s: %w", name, err)
	}
	return NormalizeTree(decoded)
}

// OrderedKeys returns the keys of m with preferred keys first, in the given
// order, followed by the remaining keys sorted.
func OrderedKeys(m map[string]any, preferred []string) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(preferred))
	for _, key := range preferred {
		if _, ok := m[key]; ok && !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	rest := make([]string, 0, len(m))
	for key := range m {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// LookupSection returns the section registered under name.
func LookupSection(name string) (*Section, bool) {
	s, ok := byName[name]
	return s, ok
}

// Sections returns all sections in menu order.
func Sections() []*Section {
	out := make([]*Section, len(sections))
	copy(out, sections)
	return out
}

// SectionNames returns the registered names sorted alphabetically.
func SectionNames() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
