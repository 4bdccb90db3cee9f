package vehiclenlp

// makeAliases maps spellings seen in customer text to the canonical lowercase
// manufacturer name. Multi-word keys are matched against the first two tokens
// after hyphens have been split out, so "harley-davidson" arrives here as
// "harley davidson".
var makeAliases = map[string]string{
	// powersports
	"honda":           "honda",
	"yamaha":          "yamaha",
	"kawasaki":        "kawasaki",
	"suzuki":          "suzuki",
	"ktm":             "ktm",
	"ducati":          "ducati",
	"triumph":         "triumph",
	"aprilia":         "aprilia",
	"husqvarna":       "husqvarna",
	"husky":           "husqvarna",
	"gasgas":          "gasgas",
	"gas gas":         "gasgas",
	"beta":            "beta",
	"sherco":          "sherco",
	"harley":          "harley-davidson",
	"harley davidson": "harley-davidson",
	"hd":              "harley-davidson",
	"indian":          "indian",
	"victory":         "victory",
	"buell":           "buell",
	"polaris":         "polaris",
	"arctic cat":      "arctic cat",
	"arcticcat":       "arctic cat",
	"textron":         "textron",
	"can am":          "can-am",
	"canam":           "can-am",
	"sea doo":         "sea-doo",
	"seadoo":          "sea-doo",
	"ski doo":         "ski-doo",
	"skidoo":          "ski-doo",
	"brp":             "brp",
	"cfmoto":          "cfmoto",
	"cf moto":         "cfmoto",
	"kymco":           "kymco",
	"sym":             "sym",
	"vespa":           "vespa",
	"piaggio":         "piaggio",
	"hyosung":         "hyosung",
	"royal enfield":   "royal enfield",
	"moto guzzi":      "moto guzzi",
	"mv agusta":       "mv agusta",
	"benelli":         "benelli",
	"kubota":          "kubota",
	"john deere":      "john deere",
	"cub cadet":       "cub cadet",
	"hisun":           "hisun",
	"massimo":         "massimo",
	"tao tao":         "taotao",
	"taotao":          "taotao",
	"zero":            "zero",
	"segway":          "segway",
	"bmw":             "bmw",

	// automotive, carried over for the occasional car query
	"chevy":         "chevrolet",
	"chevrolet":     "chevrolet",
	"ford":          "ford",
	"toyota":        "toyota",
	"nissan":        "nissan",
	"mazda":         "mazda",
	"subaru":        "subaru",
	"jeep":          "jeep",
	"dodge":         "dodge",
	"gmc":           "gmc",
	"vw":            "volkswagen",
	"volkswagen":    "volkswagen",
	"mercedes":      "mercedes-benz",
	"mercedes benz": "mercedes-benz",
	"hyundai":       "hyundai",
	"kia":           "kia",
	"land rover":    "land rover",
	"alfa romeo":    "alfa romeo",
}

// stopWords are generic vehicle-type words that say nothing about fitment.
var stopWords = map[string]bool{
	"motorcycle": true,
	"atv":        true,
	"scooter":    true,
	"snowmobile": true,
	"utv":        true,
	"pwc":        true,
	"bike":       true,
}

// stopPhrases are the multi-word vehicle types, already split into tokens.
var stopPhrases = [][]string{
	{"side", "by", "side"},
	{"jet", "ski"},
	{"dirt", "bike"},
}

// LookupMake returns the canonical make for an alias, if known.
func LookupMake(alias string) (string, bool) {
	m, ok := makeAliases[alias]
	return m, ok
}
