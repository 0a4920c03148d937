package ulasan

// Slang tables map lowercased chat abbreviations to their canonical form. An
// empty replacement removes the token.

var compactSlang = map[string]string{
	"gk": "tidak", "ga": "tidak", "gak": "tidak", "ngga": "tidak", "nggak": "tidak",
	"udah": "sudah", "udh": "sudah", "dah": "sudah",
	"tp": "tapi", "tapi": "tetapi",
	"bgt": "banget", "banget": "sangat",
	"bgus": "bagus", "bgs": "bagus",
	"jelek": "buruk", "jlek": "buruk",
	"mantap": "bagus", "mantul": "bagus",
	"keren": "bagus", "ok": "oke", "oke": "baik",
	"thx": "terima kasih", "thanks": "terima kasih", "makasih": "terima kasih",
	"plz": "tolong", "pls": "tolong",
	"yg": "yang", "dgn": "dengan", "utk": "untuk", "sdh": "sudah",
	"hrs": "harus", "tdk": "tidak", "blm": "belum", "krn": "karena",
	"gmn": "bagaimana", "gimana": "bagaimana",
	"knp": "kenapa", "knapa": "kenapa",
	"emg": "memang", "emang": "memang",
	"cuma": "hanya", "cm": "hanya",
	"sih": "", "nih": "", "dong": "", "deh": "", "lah": "", "kah": "",
}

// extendedSlang holds the additional entries of the large table. Where a key
// also appears in compactSlang, the extended value wins.
var extendedSlang = map[string]string{
	"@": "di", "abis": "habis", "wtb": "beli", "masi": "masih", "wts": "jual", "wtt": "tukar",
	"maks": "maksimal", "plisss": "tolong", "bgttt": "banget", "indo": "indonesia", "bgtt": "banget",
	"ad": "ada", "rv": "redvelvet", "plis": "tolong", "cr": "sumber",
	"cod": "bayar ditempat", "adlh": "adalah", "afaik": "as far as i know", "ahaha": "haha",
	"aj": "saja", "ajep-ajep": "dunia gemerlap", "ak": "saya", "akika": "aku", "akkoh": "aku",
	"akuwh": "aku", "alay": "norak", "alow": "halo", "ambilin": "ambilkan", "ancur": "hancur",
	"anjrit": "anjing", "anter": "antar", "ap2": "apa-apa", "apasih": "apa sih", "apes": "sial",
	"aps": "apa", "aq": "saya", "aquwh": "aku", "asbun": "asal bunyi", "aseekk": "asyik",
	"asekk": "asyik", "asem": "asam", "astul": "asal tulis", "ato": "atau",
	"au ah": "tidak mau tahu", "awak": "saya", "ay": "sayang", "ayank": "sayang",
	"b4": "sebelum", "bakalan": "akan", "bangedh": "banget", "begajulan": "nakal",
	"beliin": "belikan", "bencong": "banci", "bentar": "sebentar", "ber3": "bertiga",
	"beresin": "membereskan", "bete": "bosan", "beud": "banget", "bg": "abang",
	"bgmn": "bagaimana", "bijimane": "bagaimana", "bkl": "akan", "bknnya": "bukannya",
	"blegug": "bodoh", "blh": "boleh", "bln": "bulan", "blum": "belum", "bnci": "benci",
	"bnran": "yang benar", "bodor": "lucu", "bokap": "ayah", "boker": "buang air besar",
	"bokis": "bohong", "boljug": "boleh juga", "boyeh": "boleh", "br": "baru",
	"brg": "bareng", "bro": "saudara laki-laki", "bru": "baru", "bs": "bisa",
	"bsen": "bosan", "bt": "buat", "btw": "ngomong-ngomong", "buaya": "tidak setia",
	"bubbu": "tidur", "bubu": "tidur", "bw": "bawa", "bwt": "buat", "byk": "banyak",
	"byrin": "bayarkan", "cabal": "sabar", "cadas": "keren", "can": "belum",
	"capcus": "pergi", "caper": "cari perhatian", "ce": "cewek", "cemen": "penakut",
	"cengengesan": "tertawa", "cepet": "cepat", "cew": "cewek", "chuyunk": "sayang",
	"cimeng": "ganja", "ciyh": "sih", "ckepp": "cakep", "ckp": "cakep",
	"cmiiw": "correct me if i'm wrong", "cmpur": "campur", "cong": "banci",
	"cowwyy": "maaf", "cp": "siapa", "cpe": "capek", "cppe": "capek", "cucok": "cocok",
	"cuex": "cuek", "cumi": "Cuma miscall", "cups": "culun", "cwek": "cewek",
	"cyin": "cinta", "d": "di", "dah": "deh", "dapet": "dapat", "de": "adik",
	"dek": "adik", "demen": "suka", "deyh": "deh", "diancurin": "dihancurkan",
	"dimaafin": "dimaafkan", "dimintak": "diminta", "disono": "di sana", "dket": "dekat",
	"dkk": "dan kawan-kawan", "dll": "dan lain-lain", "dlu": "dulu", "dngn": "dengan",
	"dodol": "bodoh", "doku": "uang", "dongs": "dong", "dpt": "dapat", "dri": "dari",
	"drmn": "darimana", "drtd": "dari tadi", "dst": "dan seterusnya", "dtg": "datang",
	"duh": "aduh", "duren": "durian", "ed": "edisi", "egp": "emang gue pikirin",
	"eke": "aku", "elu": "kamu", "emangnya": "memangnya", "emng": "memang", "endak": "tidak",
	"enggak": "tidak", "envy": "iri", "ex": "mantan", "fax": "facsimile",
	"fifo": "first in first out", "folbek": "follow back", "fyi": "sebagai informasi",
	"gaada": "tidak ada uang", "gag": "tidak", "gaje": "tidak jelas", "gak papa": "tidak apa-apa",
	"gan": "juragan", "gaptek": "gagap teknologi", "gatek": "gagap teknologi", "gawe": "kerja",
	"gbs": "tidak bisa", "gebetan": "orang yang disuka", "geje": "tidak jelas",
	"gile": "gila", "gino": "gigi nongol", "githu": "gitu", "gj": "tidak jelas",
	"gmana": "bagaimana", "gn": "begini", "goblok": "bodoh", "gowes": "mengayuh sepeda",
	"gpny": "tidak punya", "gr": "gede rasa", "gretongan": "gratisan", "gtau": "tidak tahu",
	"gua": "saya", "guoblok": "goblok", "gw": "saya",
}

// CompactSlang returns a copy of the short slang table used by the full
// pipeline.
func CompactSlang() map[string]string {
	return copySlang(compactSlang)
}

// ExtendedSlang returns a copy of the large slang table used by the notebook
// pipeline: the compact table overlaid with the extended entries.
func ExtendedSlang() map[string]string {
	out := copySlang(compactSlang)
	for k, v := range extendedSlang {
		out[k] = v
	}
	return out
}

func copySlang(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
