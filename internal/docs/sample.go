package docs

// Sample records shown in the prototype. Content is intentionally
// realistic German paperwork so the coach has something to explain.
var sampleDocuments = []Document{
	{
		ID:    "1",
		Title: "Arztbrief Orthopädie",
		Type:  "Arztbrief",
		Date:  "12.01.2026",
		Content: `Sehr geehrte Kolleginnen und Kollegen,

wir berichten über den o.g. Patienten, der sich am 10.01.2026 in unserer orthopädischen Sprechstunde vorstellte.

Diagnose: Lumboischialgie bei Bandscheibenprotrusion L4/L5

Anamnese: Der Patient klagt seit ca. 3 Wochen über Schmerzen im unteren Rückenbereich mit Ausstrahlung in das linke Bein. Die Beschwerden verstärken sich beim Sitzen und Bücken.

Befund: Druckschmerz paravertebral lumbal links, positives Lasègue-Zeichen links bei 45°, keine sensomotorischen Defizite.

Therapieempfehlung:
- Physiotherapie (KG) 2x wöchentlich für 6 Wochen
- NSAR bei Bedarf (Ibuprofen 600mg)
- Wiedervorstellung in 4 Wochen zur Verlaufskontrolle

Mit freundlichen Grüßen,
Dr. med. M. Schmidt
Facharzt für Orthopädie`,
	},
	{
		ID:    "2",
		Title: "Laborbefund Blutwerte",
		Type:  "Laborbefund",
		Date:  "03.11.2025",
		Content: `Labormedizinische Untersuchung

Entnahmedatum: 03.11.2025
Material: Serum, EDTA-Blut

Ergebnisse:
- Hämoglobin: 14,2 g/dl (Referenz: 12-16)
- Leukozyten: 7.200 /µl (Referenz: 4.000-10.000)
- Thrombozyten: 245.000 /µl (Referenz: 150.000-400.000)
- Glucose nüchtern: 98 mg/dl (Referenz: 70-100)
- HbA1c: 5,4 % (Referenz: <5,7)
- Cholesterin gesamt: 212 mg/dl (Referenz: <200)
- LDL-Cholesterin: 138 mg/dl (Referenz: <130)
- HDL-Cholesterin: 52 mg/dl (Referenz: >40)
- Triglyceride: 145 mg/dl (Referenz: <150)

Beurteilung: Leicht erhöhtes Gesamtcholesterin und LDL. Empfehlung zur Ernährungsberatung.

Dr. med. K. Weber
Labormedizin`,
	},
	{
		ID:    "3",
		Title: "Impfbescheinigung COVID-19",
		Type:  "Impfbescheinigung",
		Date:  "15.09.2024",
		Content: `Impfbescheinigung

Impfung gegen: COVID-19
Impfstoff: Comirnaty (BioNTech/Pfizer)
Chargennummer: FJ5929

Impfdatum: 15.09.2024
Impfung Nr.: 4 (2. Auffrischungsimpfung)

Die Impfung wurde ordnungsgemäß durchgeführt.

Impfende Stelle: Hausarztpraxis Dr. Müller
Stempel und Unterschrift`,
	},
}
