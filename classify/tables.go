package classify

// Other labels any continent, country or genre that the tables do not cover.
const Other = "기타"

type Location struct {
	Continent string
	Country   string
}

// Countries maps ISO 3166-1 alpha-2 codes to a continent and a country name.
var Countries = map[string]Location{
	// Asia
	"KR": {"아시아", "대한민국"},
	"JP": {"아시아", "일본"},
	"CN": {"아시아", "중국"},
	"IN": {"아시아", "인도"},
	"ID": {"아시아", "인도네시아"},
	"SG": {"아시아", "싱가포르"},
	"VN": {"아시아", "베트남"},
	"TH": {"아시아", "태국"},
	"MY": {"아시아", "말레이시아"},
	"PH": {"아시아", "필리핀"},

	// Europe
	"GB": {"유럽", "영국"},
	"UK": {"유럽", "영국"},
	"FR": {"유럽", "프랑스"},
	"DE": {"유럽", "독일"},
	"IT": {"유럽", "이탈리아"},
	"ES": {"유럽", "스페인"},
	"RU": {"유럽", "러시아"},
	"NL": {"유럽", "네덜란드"},
	"PL": {"유럽", "폴란드"},
	"PT": {"유럽", "포르투갈"},
	"SE": {"유럽", "스웨덴"},

	// North America
	"US": {"북미", "미국"},
	"CA": {"북미", "캐나다"},
	"MX": {"북미", "멕시코"},
	"CU": {"북미", "쿠바"},
	"DO": {"북미", "도미니카 공화국"},

	// South America
	"BR": {"남미", "브라질"},
	"AR": {"남미", "아르헨티나"},
	"CO": {"남미", "콜롬비아"},
	"CL": {"남미", "칠레"},
	"PE": {"남미", "페루"},

	// Oceania
	"AU": {"오세아니아", "호주"},
	"NZ": {"오세아니아", "뉴질랜드"},

	// Africa
	"ZA": {"아프리카", "남아프리카 공화국"},
	"EG": {"아프리카", "이집트"},
	"NG": {"아프리카", "나이지리아"},
	"KE": {"아프리카", "케냐"},
}

type GenreRule struct {
	Keyword string
	Genre   string
}

// Genres is checked in order; the first keyword contained in the lower-cased
// group title wins.
var Genres = []GenreRule{
	{"news", "뉴스"},
	{"sport", "스포츠"},
	{"sports", "스포츠"},
	{"movie", "영화/드라마"},
	{"movies", "영화/드라마"},
	{"film", "영화/드라마"},
	{"kids", "키즈"},
	{"children", "키즈"},
	{"music", "음악"},
	{"religion", "종교"},
	{"religious", "종교"},
	{"documentary", "다큐"},
	{"docu", "다큐"},
	{"lifestyle", "라이프스타일"},
	{"shopping", "쇼핑"},
	{"entertainment", "엔터테인먼트"},
	{"general", "엔터테인먼트"},
}
