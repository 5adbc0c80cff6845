package country

import "strings"

// table lists alpha-2 codes with the names and abbreviations users type for them.
const table = `
AE=UAE;UNITED ARAB EMIRATES
US=USA;UNITED STATES
GB=UK;UNITED KINGDOM
IN=INDIA
CA=CANADA
AU=AUSTRALIA
DE=GERMANY
FR=FRANCE
IT=ITALY
ES=SPAIN
NL=NETHERLANDS
BE=BELGIUM
CH=SWITZERLAND
AT=AUSTRIA
SE=SWEDEN
NO=NORWAY
DK=DENMARK
FI=FINLAND
PL=POLAND
CZ=CZECH REPUBLIC
HU=HUNGARY
PT=PORTUGAL
GR=GREECE
TR=TURKEY
RU=RUSSIA
CN=CHINA
JP=JAPAN
KR=SOUTH KOREA
SG=SINGAPORE
MY=MALAYSIA
TH=THAILAND
PH=PHILIPPINES
ID=INDONESIA
VN=VIETNAM
BR=BRAZIL
AR=ARGENTINA
MX=MEXICO
CL=CHILE
CO=COLOMBIA
PE=PERU
ZA=SOUTH AFRICA
EG=EGYPT
IL=ISRAEL
SA=SAUDI ARABIA
KW=KUWAIT
QA=QATAR
BH=BAHRAIN
OM=OMAN
JO=JORDAN
LB=LEBANON
IR=IRAN
IQ=IRAQ
SY=SYRIA
PK=PAKISTAN
AF=AFGHANISTAN
BD=BANGLADESH
LK=SRI LANKA
NP=NEPAL
BT=BHUTAN
MM=MYANMAR
KH=CAMBODIA
LA=LAOS
MN=MONGOLIA
TW=TAIWAN
HK=HONG KONG
MO=MACAU
NZ=NEW ZEALAND
FJ=FIJI
PG=PAPUA NEW GUINEA
SB=SOLOMON ISLANDS
VU=VANUATU
WS=SAMOA
TO=TONGA
KI=KIRIBATI
TV=TUVALU
NR=NAURU
PW=PALAU
MH=MARSHALL ISLANDS
FM=MICRONESIA
CK=COOK ISLANDS
NU=NIUE
TK=TOKELAU
AS=AMERICAN SAMOA
GU=GUAM
MP=NORTHERN MARIANA ISLANDS
PR=PUERTO RICO
VI=VIRGIN ISLANDS
BM=BERMUDA
KY=CAYMAN ISLANDS
TC=TURKS AND CAICOS ISLANDS
BS=BAHAMAS
JM=JAMAICA
HT=HAITI
DO=DOMINICAN REPUBLIC
CU=CUBA
TT=TRINIDAD AND TOBAGO
BB=BARBADOS
LC=SAINT LUCIA
VC=SAINT VINCENT AND THE GRENADINES
GD=GRENADA
AG=ANTIGUA AND BARBUDA
KN=SAINT KITTS AND NEVIS
DM=DOMINICA
BZ=BELIZE
GT=GUATEMALA
HN=HONDURAS
SV=EL SALVADOR
NI=NICARAGUA
CR=COSTA RICA
PA=PANAMA
VE=VENEZUELA
GY=GUYANA
SR=SURINAME
GF=FRENCH GUIANA
EC=ECUADOR
BO=BOLIVIA
PY=PARAGUAY
UY=URUGUAY
AL=ALBANIA
AD=ANDORRA
AM=ARMENIA
AZ=AZERBAIJAN
BY=BELARUS
BA=BOSNIA AND HERZEGOVINA
BG=BULGARIA
HR=CROATIA
CY=CYPRUS
EE=ESTONIA
GE=GEORGIA
IS=ICELAND
IE=IRELAND
LV=LATVIA
LI=LIECHTENSTEIN
LT=LITHUANIA
LU=LUXEMBOURG
MT=MALTA
MD=MOLDOVA
MC=MONACO
ME=MONTENEGRO
MK=NORTH MACEDONIA
RO=ROMANIA
SM=SAN MARINO
RS=SERBIA
SK=SLOVAKIA
SI=SLOVENIA
UA=UKRAINE
VA=VATICAN CITY
XK=KOSOVO
DZ=ALGERIA
AO=ANGOLA
BJ=BENIN
BW=BOTSWANA
BF=BURKINA FASO
BI=BURUNDI
CM=CAMEROON
CV=CAPE VERDE
CF=CENTRAL AFRICAN REPUBLIC
TD=CHAD
KM=COMOROS
CG=CONGO
CD=DEMOCRATIC REPUBLIC OF THE CONGO
DJ=DJIBOUTI
GQ=EQUATORIAL GUINEA
ER=ERITREA
SZ=ESWATINI
ET=ETHIOPIA
GA=GABON
GM=GAMBIA
GH=GHANA
GN=GUINEA
GW=GUINEA-BISSAU
CI=IVORY COAST
KE=KENYA
LS=LESOTHO
LR=LIBERIA
LY=LIBYA
MG=MADAGASCAR
MW=MALAWI
ML=MALI
MR=MAURITANIA
MU=MAURITIUS
MA=MOROCCO
MZ=MOZAMBIQUE
NA=NAMIBIA
NE=NIGER
NG=NIGERIA
RW=RWANDA
ST=SAO TOME AND PRINCIPE
SN=SENEGAL
SC=SEYCHELLES
SL=SIERRA LEONE
SO=SOMALIA
SD=SUDAN
SS=SOUTH SUDAN
TZ=TANZANIA
TG=TOGO
TN=TUNISIA
UG=UGANDA
ZM=ZAMBIA
ZW=ZIMBABWE
`

var (
	names = map[string]string{}
	codes = map[string]struct{}{}
)

func init() {
	for _, line := range strings.Split(strings.TrimSpace(table), "\n") {
		code, aliases, _ := strings.Cut(line, "=")
		codes[code] = struct{}{}
		if aliases == "" {
			continue
		}
		for _, name := range strings.Split(aliases, ";") {
			names[name] = code
		}
	}
}

// Code maps free text to an alpha-2 code. Unknown input falls back to its first two upper-cased
// characters, which is lossy but accepted by the gateway.
func Code(raw string) string {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if code, ok := names[key]; ok {
		return code
	}
	if _, ok := codes[key]; ok {
		return key
	}
	r := []rune(key)
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}
