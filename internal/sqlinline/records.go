package sqlinline

// QListEligibleRecordsTemplate selects records that have both a prompt in the
// requested column and a reference image. The %s verb is replaced with a
// quoted column identifier taken from the configured allow-list.
const QListEligibleRecordsTemplate = `--sql 3f0c2a8e-5d41-4b7a-9e62-1c8d7f4a2b90
select
  id::text,
  position,
  coalesce(%[1]s, '') as prompt,
  coalesce(reference_image_url, '') as reference_image_url,
  coalesce(style_id, '') as style_id,
  coalesce(generation_status, '') as generation_status,
  coalesce(generated_urls, '[]'::jsonb) as generated_urls,
  updated_at
from records
where btrim(coalesce(%[1]s, '')) <> ''
  and btrim(coalesce(reference_image_url, '')) <> ''
  and (cardinality($1::text[]) = 0 or id::text = any($1::text[]))
order by position asc, id asc
limit case when $2::int > 0 then $2::int else null end;
`

const QPatchRecordGeneration = `--sql 9d27b5c4-80e3-4f1a-b6a2-4e5f0c7d1a38
update records
set generation_status = $2::text,
    generated_urls = coalesce($3::jsonb, '[]'::jsonb),
    updated_at = now()
where id::text = $1::text
returning
  id::text,
  position,
  coalesce(reference_image_url, '') as reference_image_url,
  coalesce(style_id, '') as style_id,
  coalesce(generation_status, '') as generation_status,
  coalesce(generated_urls, '[]'::jsonb) as generated_urls,
  updated_at;
`
